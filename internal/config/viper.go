// Package config reads structured settings out of Viper.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/agentstation/sedmap/internal/blob/s3"
	"github.com/agentstation/sedmap/internal/transport"
	"github.com/agentstation/sedmap/pkg/bands"
)

// Keys read by this package.
const (
	KeyBandAliases       = "band_aliases"
	KeyS3Region          = "spectra.s3.region"
	KeyS3Endpoint        = "spectra.s3.endpoint"
	KeyS3PathStyle       = "spectra.s3.path_style"
	KeyS3AccessKeyID     = "spectra.s3.access_key_id"
	KeyS3SecretAccessKey = "spectra.s3.secret_access_key"
	KeyHTTPAuthScheme    = "spectra.http_auth.scheme"
	KeyHTTPAuthName      = "spectra.http_auth.name"
	KeyHTTPAuthToken     = "spectra.http_auth.token"
	KeyHTTPAuthHost      = "spectra.http_auth.host"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(v *viper.Viper, key string) string {
	osValue := os.Getenv(key)
	viperValue := v.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// BandAliases decodes the band_aliases list. Every entry needs a "from";
// an empty "to" deletes the match.
func BandAliases(v *viper.Viper) ([]bands.Alias, error) {
	if !v.IsSet(KeyBandAliases) {
		return nil, nil
	}
	var aliases []bands.Alias
	if err := v.UnmarshalKey(KeyBandAliases, &aliases); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", KeyBandAliases, err)
	}
	for i, a := range aliases {
		if a.From == "" {
			return nil, fmt.Errorf("%s[%d]: from is required", KeyBandAliases, i)
		}
	}
	return aliases, nil
}

// S3 builds the S3 store configuration. Credentials fall back to the AWS
// default chain when unset.
func S3(v *viper.Viper) s3.Config {
	return s3.Config{
		Region:          GetString(v, KeyS3Region),
		Endpoint:        GetString(v, KeyS3Endpoint),
		PathStyle:       v.GetBool(KeyS3PathStyle),
		AccessKeyID:     GetString(v, KeyS3AccessKeyID),
		SecretAccessKey: GetString(v, KeyS3SecretAccessKey),
	}
}

// HTTPAuth reads archive credentials for HTTP(S) spectrum fetches and
// checks that they describe a usable authenticator.
func HTTPAuth(v *viper.Viper) (transport.AuthConfig, error) {
	cfg := transport.AuthConfig{
		Scheme: GetString(v, KeyHTTPAuthScheme),
		Name:   GetString(v, KeyHTTPAuthName),
		Token:  GetString(v, KeyHTTPAuthToken),
		Host:   GetString(v, KeyHTTPAuthHost),
	}
	if _, err := transport.NewAuthenticator(cfg); err != nil {
		return transport.AuthConfig{}, fmt.Errorf("spectra.http_auth: %w", err)
	}
	return cfg, nil
}
