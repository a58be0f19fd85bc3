package utils

import (
	"fmt"
	"net/url"
)

// GetWalletBridgeUrl returns the address of the wallet bridge page. baseURL
// wins over the local server port when it is set.
func GetWalletBridgeUrl(baseURL string, serverPort int) (string, error) {
	if baseURL != "" {
		parsedUrl, err := url.Parse(baseURL)
		if err != nil {
			return "", fmt.Errorf("invalid BASE_URL: %w", err)
		}
		if parsedUrl.Scheme == "" || parsedUrl.Host == "" {
			return "", fmt.Errorf("invalid BASE_URL: %q is not absolute", baseURL)
		}
		parsedUrl.Path = "/wallet"
		parsedUrl.RawQuery = ""
		return parsedUrl.String(), nil
	}

	return fmt.Sprintf("http://localhost:%d/wallet", serverPort), nil
}
