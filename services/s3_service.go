package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Printf("S3 client unavailable: %v", err)
		return
	}
	s3Client = s3.NewFromConfig(cfg)
}

// GenerateAvatarUploadURL generates a presigned URL for uploading an avatar.
// The returned key becomes the account's photoURL reference.
func GenerateAvatarUploadURL(accountID, fileType string) (string, string, error) {
	if s3Client == nil {
		return "", "", fmt.Errorf("s3 client not initialized")
	}

	key := "avatars/" + accountID + "/" + time.Now().Format("20060102150405")
	params := &s3.PutObjectInput{
		Bucket:      aws.String(os.Getenv("S3_BUCKET_NAME")),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presigner := s3.NewPresignClient(s3Client)
	presignedURL, err := presigner.PresignPutObject(context.TODO(), params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", "", err
	}
	return presignedURL.URL, key, nil
}

// GenerateAvatarReadURL generates a presigned URL for reading an avatar
func GenerateAvatarReadURL(key string) (string, error) {
	if s3Client == nil {
		return "", fmt.Errorf("s3 client not initialized")
	}

	params := &s3.GetObjectInput{
		Bucket: aws.String(os.Getenv("S3_BUCKET_NAME")),
		Key:    aws.String(key),
	}
	presigner := s3.NewPresignClient(s3Client)
	presignedURL, err := presigner.PresignGetObject(context.TODO(), params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", err
	}
	return presignedURL.URL, nil
}
