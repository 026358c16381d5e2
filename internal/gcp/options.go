package gcp

import "google.golang.org/api/option"

// ClientOptions returns the options shared by every Google Cloud client. An empty
// credentialsFile falls back to Application Default Credentials.
func ClientOptions(projectID, credentialsFile string) []option.ClientOption {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	if projectID != "" {
		opts = append(opts, option.WithQuotaProject(projectID))
	}
	return opts
}
