package controllers

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errAdminOnly = errors.New("only admins may act on other users' records")

func parseObjectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}
