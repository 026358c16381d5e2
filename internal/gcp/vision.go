package gcp

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
)

// NewVisionClient creates the Cloud Vision client. It is created once per process
// and shared by every request.
func NewVisionClient(ctx context.Context, projectID, credentialsFile string) (*vision.ImageAnnotatorClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewVisionClient: projectID cannot be empty")
	}

	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptions(projectID, credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("vision.NewImageAnnotatorClient: %w", err)
	}
	return client, nil
}
