package render

import "testing"

func TestResolveEmbed(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantProvider string
		wantURL      string
		wantOK       bool
	}{
		{
			"youtube watch",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			ProviderYoutube, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", true,
		},
		{
			"youtu.be short link",
			"https://youtu.be/dQw4w9WgXcQ",
			ProviderYoutube, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", true,
		},
		{
			"youtube shorts",
			"https://youtube.com/shorts/abc123XYZ_-",
			ProviderYoutube, "https://www.youtube-nocookie.com/embed/abc123XYZ_-", true,
		},
		{
			"youtube without scheme",
			"youtube.com/watch?v=dQw4w9WgXcQ",
			ProviderYoutube, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", true,
		},
		{
			"youtube watch with extra params",
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
			ProviderYoutube, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", true,
		},
		{
			"instagram post",
			"https://www.instagram.com/p/C8HqzXhJkLm/",
			ProviderInstagram, "https://www.instagram.com/p/C8HqzXhJkLm/embed/", true,
		},
		{
			"instagram reel",
			"https://instagram.com/reel/C9AbCdEfGhI",
			ProviderInstagram, "https://www.instagram.com/reel/C9AbCdEfGhI/embed/", true,
		},
		{
			"twitter status",
			"https://twitter.com/NASA/status/1410624005669169154",
			ProviderTwitter, "https://platform.twitter.com/embed/Tweet.html?id=1410624005669169154", true,
		},
		{
			"x.com status",
			"https://x.com/NASA/status/1410624005669169154",
			ProviderTwitter, "https://platform.twitter.com/embed/Tweet.html?id=1410624005669169154", true,
		},
		{"empty", "", "", "", false},
		{"unsupported host", "https://vimeo.com/12345", "", "", false},
		{"youtube without video id", "https://www.youtube.com/watch", "", "", false},
		{"youtube bad id", "https://www.youtube.com/watch?v=a", "", "", false},
		{"instagram profile", "https://www.instagram.com/nasa/", "", "", false},
		{"twitter profile", "https://twitter.com/NASA", "", "", false},
		{"ftp scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, embedURL, ok := ResolveEmbed(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("ResolveEmbed(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if provider != tt.wantProvider {
				t.Errorf("provider = %q, want %q", provider, tt.wantProvider)
			}
			if embedURL != tt.wantURL {
				t.Errorf("embedURL = %q, want %q", embedURL, tt.wantURL)
			}
		})
	}
}
