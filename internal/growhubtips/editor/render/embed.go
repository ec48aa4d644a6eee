package render

import (
	"net/url"
	"regexp"
	"strings"
)

// Провайдеры встраиваемого контента.
const (
	ProviderYoutube   = "youtube"
	ProviderInstagram = "instagram"
	ProviderTwitter   = "twitter"
)

var (
	youtubeIDReg    = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)
	instagramReg    = regexp.MustCompile(`^/(p|reel)/([A-Za-z0-9_-]+)/?`)
	tweetStatusReg  = regexp.MustCompile(`^/[A-Za-z0-9_]+/status/(\d+)`)
	youtubePathReg  = regexp.MustCompile(`^/(shorts|embed)/([A-Za-z0-9_-]+)$`)
	youtubeNocookie = "https://www.youtube-nocookie.com/embed/"
)

// ResolveEmbed разбирает пользовательский URL и возвращает провайдера и
// URL для iframe. Для неподдерживаемых адресов ok равен false.
func ResolveEmbed(rawURL string) (provider, embedURL string, ok bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", "", false
	}

	// Редактор может прислать адрес без схемы
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if id := youtubeID(u); id != "" {
			return ProviderYoutube, youtubeNocookie + id, true
		}
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if youtubeIDReg.MatchString(id) {
			return ProviderYoutube, youtubeNocookie + id, true
		}
	case "instagram.com":
		if m := instagramReg.FindStringSubmatch(u.Path); m != nil {
			return ProviderInstagram, "https://www.instagram.com/" + m[1] + "/" + m[2] + "/embed/", true
		}
	case "twitter.com", "x.com", "mobile.twitter.com":
		if m := tweetStatusReg.FindStringSubmatch(u.Path); m != nil {
			return ProviderTwitter, "https://platform.twitter.com/embed/Tweet.html?id=" + m[1], true
		}
	}

	return "", "", false
}

func youtubeID(u *url.URL) string {
	if u.Path == "/watch" {
		id := u.Query().Get("v")
		if youtubeIDReg.MatchString(id) {
			return id
		}
		return ""
	}

	if m := youtubePathReg.FindStringSubmatch(u.Path); m != nil && youtubeIDReg.MatchString(m[2]) {
		return m[2]
	}
	return ""
}
