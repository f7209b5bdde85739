package config

import (
	"net/url"
	"strings"
	"time"
)

// SiteConfig holds per-site settings, keyed by host in the config file.
type SiteConfig struct {
	// Cookie is sent with page requests, e.g. "session=abc; region=eu".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers for page downloads.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Trigger overrides the global trigger mode for this site.
	Trigger string `yaml:"trigger,omitempty"`

	// ExtraStripSelectors are CSS selectors removed before extraction,
	// in addition to the built-in list.
	ExtraStripSelectors []string `yaml:"extraStripSelectors,omitempty"`
}

// CacheFile holds cache settings from the config file.
type CacheFile struct {
	// TTL is how long an analysis stays fresh, e.g. "12h".
	TTL time.Duration `yaml:"ttl,omitempty"`

	// HistoryLimit is the number of history entries kept.
	HistoryLimit int `yaml:"historyLimit,omitempty"`
}

// File is the structure of the .vegancheck configuration file.
type File struct {
	// Endpoint overrides the classifier base URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// APIHeaders are sent with every classifier request.
	APIHeaders map[string]string `yaml:"apiHeaders,omitempty"`

	// ProxyAddress routes page downloads through a SOCKS5 proxy.
	ProxyAddress string `yaml:"proxy,omitempty"`

	// Cache holds cache lifetime settings.
	Cache CacheFile `yaml:"cache,omitempty"`

	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps hosts (e.g. "shop.example") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the settings for target merged over the defaults.
// target may be a full URL or a bare host; a leading "www." is ignored
// when the exact host has no entry.
func (cf *File) GetSiteConfig(target string) SiteConfig {
	result := cf.Defaults
	result.Headers = copyHeaders(cf.Defaults.Headers)
	result.ExtraStripSelectors = append([]string(nil), cf.Defaults.ExtraStripSelectors...)

	host := hostOf(target)
	site, ok := cf.Sites[host]
	if !ok {
		site, ok = cf.Sites[strings.TrimPrefix(host, "www.")]
	}
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.Trigger != "" {
		result.Trigger = site.Trigger
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	result.ExtraStripSelectors = append(result.ExtraStripSelectors, site.ExtraStripSelectors...)

	return result
}

// hostOf returns the lowercased host of target, which may lack a scheme.
func hostOf(target string) string {
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return strings.ToLower(target)
	}
	return strings.ToLower(u.Hostname())
}

func copyHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
