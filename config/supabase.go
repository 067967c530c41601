package config

import (
	"fmt"
	"os"

	"github.com/supabase-community/gotrue-go"
	postgrest "github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

var SupabaseClient *supa.Client

// PostgrestClient talks to the same project through the PostgREST API directly.
// The generation worker uses it for job-status records so it does not share
// request-scoped state with the HTTP handlers.
var PostgrestClient *postgrest.Client

// InitSupabase initializes the Supabase clients using environment variables.
// SUPABASE_URL and SUPABASE_SERVICE_KEY are required; there is no anonymous
// fallback because every write in this service goes through the service role.
func InitSupabase() error {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_SERVICE_KEY")

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set in environment variables")
	}

	client, err := supa.NewClient(supabaseURL, supabaseKey, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize Supabase client: %w", err)
	}
	SupabaseClient = client

	PostgrestClient = postgrest.NewClient(supabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        supabaseKey,
		"Authorization": fmt.Sprintf("Bearer %s", supabaseKey),
	})
	if PostgrestClient.ClientError != nil {
		return fmt.Errorf("failed to initialize PostgREST client: %w", PostgrestClient.ClientError)
	}

	return nil
}

// GetSupabaseURL returns the Supabase project URL used for API requests.
func GetSupabaseURL() string {
	return os.Getenv("SUPABASE_URL")
}

// AuthClientForToken returns a GoTrue client acting as the holder of the
// given access token. The admin gate uses it to resolve the calling identity.
func AuthClientForToken(token string) gotrue.Client {
	return SupabaseClient.Auth.WithToken(token)
}

// GetJWTSecret returns the project JWT secret used to verify Supabase access
// tokens server-side. Empty means signature verification is unavailable and
// admin routes must refuse all requests.
func GetJWTSecret() string {
	return os.Getenv("SUPABASE_JWT_SECRET")
}

// GetAdminEmails returns the raw comma-separated admin allow-list.
// Normalization (trim, lowercase) happens in the adminauth gate.
func GetAdminEmails() string {
	return os.Getenv("ADMIN_EMAILS")
}
