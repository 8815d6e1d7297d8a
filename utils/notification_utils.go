package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/models"
)

// SaveNotification saves an in-app notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}

// SendEmail sends a plain-text email via the configured SMTP server.
func SendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}
	if smtpHost == "" {
		return fmt.Errorf("SMTP not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}

// NotifyApprovalDecision emails a creator about the admin's approval decision
// and records an in-app notification.
func NotifyApprovalDecision(db *mongo.Client, profile *models.CreatorProfile, approved bool) error {
	var subject, body, notifMsg string
	if approved {
		subject = "Your account has been approved"
		body = fmt.Sprintf("Dear %s,\n\nYour account has been approved. You can now sign in and start your live sessions.\n\nBest regards,\nAgensi Live", profile.Name)
		notifMsg = "Your account has been approved. Welcome aboard!"
	} else {
		subject = "Your account application"
		body = fmt.Sprintf("Dear %s,\n\nWe are sorry to inform you that your account application was not approved.\n\nBest regards,\nAgensi Live", profile.Name)
		notifMsg = "Your account application was not approved."
	}

	if err := SendEmail(profile.Email, subject, body); err != nil {
		log.Printf("Failed to send approval email to %s: %v", profile.Email, err)
	}

	return SaveNotification(db, profile.ID, subject, notifMsg, models.NotificationApproval, map[string]interface{}{
		"approved": fmt.Sprintf("%t", approved),
	})
}

// SendFCMNotification sends a Firebase Cloud Messaging push to a creator or
// investor identified by their profile id.
func SendFCMNotification(db *mongo.Client, userID primitive.ObjectID, title, message string, data map[string]interface{}) error {
	collection := config.GetCollection(db, "profiles")
	var profile models.CreatorProfile
	err := collection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		return fmt.Errorf("failed to find profile: %w", err)
	}

	if profile.FCMToken == "" {
		return fmt.Errorf("profile has no FCM token")
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	notificationData := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for key, value := range data {
		if str, ok := value.(string); ok {
			notificationData[key] = str
		}
	}

	fcmMessage := &messaging.Message{
		Token: profile.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: notificationData,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "agensi_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		log.Printf("Error sending FCM notification: %v", err)
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM notification sent to %s: %s", userID.Hex(), response)
	return nil
}
