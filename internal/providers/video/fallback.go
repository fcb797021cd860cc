package video

import (
	"net/url"
	"strings"

	"easyvideo/internal/infra"
	"easyvideo/internal/storage"
)

// RemoteSamples are public clips used when none of the configured sample
// videos can be served.
var RemoteSamples = []string{
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerFun.mp4",
}

// ResolveFallbacks drops sample URLs that point into the local videos
// directory but have no file behind them. Remote URLs are kept unchecked.
// When nothing is left, RemoteSamples are returned.
func ResolveFallbacks(urls []string, publicBaseURL string, store *storage.FileStore, logger *infra.Logger) []string {
	if logger == nil {
		logger = infra.NopLogger()
	}
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		if key, ok := LocalKey(raw, publicBaseURL); ok && !store.Exists(key) {
			logger.Warn().Str("url", raw).Str("key", key).Msg("video: sample video missing from public dir; skipping")
			continue
		}
		out = append(out, raw)
	}
	if len(out) == 0 {
		logger.Warn().Strs("urls", RemoteSamples).Msg("video: no local sample videos; using remote samples")
		return append([]string(nil), RemoteSamples...)
	}
	return out
}

// LocalKey maps a URL served from the public videos directory back to its
// storage key. Relative URLs are taken as local; absolute ones must share the
// host of publicBaseURL.
func LocalKey(raw, publicBaseURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if u.IsAbs() && publicBaseURL != "" {
		base, err := url.Parse(publicBaseURL)
		if err != nil || base.Host != u.Host {
			return "", false
		}
	}
	key := strings.TrimLeft(u.Path, "/")
	if !strings.HasPrefix(key, videoDir+"/") {
		return "", false
	}
	return key, true
}
