package executor

import (
	"net/url"
	"strings"
)

// Hosts de CDN do kuwo cujas imagens http precisam passar pelo proxy local
// (o app não consegue carregar conteúdo http direto).
var proxyHosts = []string{"kuwo.cn", "kwcdn"}

// RewriteProxyURLs reescreve estruturalmente toda string http:// de CDN
// conhecida para a forma /proxy?url=<original url-encoded>. Aplica em mapas e
// listas recursivamente; qualquer outro valor passa intacto.
func RewriteProxyURLs(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(val))
		for k, item := range val {
			result[k] = RewriteProxyURLs(item)
		}
		return result

	case []interface{}:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = RewriteProxyURLs(item)
		}
		return result

	case string:
		if strings.HasPrefix(val, "http://") && containsProxyHost(val) {
			return "/proxy?url=" + url.QueryEscape(val)
		}
		return val

	default:
		return v
	}
}

// IsProxyableURL informa se a URL aponta para um CDN conhecido e pode ser
// servida pelo endpoint de proxy local.
func IsProxyableURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	return containsProxyHost(s)
}

func containsProxyHost(s string) bool {
	for _, host := range proxyHosts {
		if strings.Contains(s, host) {
			return true
		}
	}
	return false
}
