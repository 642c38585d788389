package services

import (
	"testing"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/shared"
)

func TestRecognize(t *testing.T) {
	tc := []struct {
		name     string
		text     string
		wantOK   bool
		wantID   models.ServiceID
		wantLink string
	}{
		{
			name:     "spotify track",
			text:     "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			wantOK:   true,
			wantID:   models.Spotify,
			wantLink: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "spotify short link inside a sentence",
			text:     "listen to this https://spotify.link/AbCdEf!",
			wantOK:   true,
			wantID:   models.Spotify,
			wantLink: "https://spotify.link/AbCdEf",
		},
		{
			name:     "yandex album track",
			text:     "https://music.yandex.ru/album/123/track/456",
			wantOK:   true,
			wantID:   models.YandexMusic,
			wantLink: "https://music.yandex.ru/album/123/track/456",
		},
		{
			name:     "yandex regional domain, upper case",
			text:     "HTTPS://MUSIC.YANDEX.KZ/track/9.",
			wantOK:   true,
			wantID:   models.YandexMusic,
			wantLink: "HTTPS://MUSIC.YANDEX.KZ/track/9",
		},
		{
			name:     "mts onelink",
			text:     "https://mts-music-spo.onelink.me/sKFX/abc",
			wantOK:   true,
			wantID:   models.MTSMusic,
			wantLink: "https://mts-music-spo.onelink.me/sKFX/abc",
		},
		{
			name:     "mts content page",
			text:     "https://music.mts.ru/track/777",
			wantOK:   true,
			wantID:   models.MTSMusic,
			wantLink: "https://music.mts.ru/track/777",
		},
		{name: "no url", text: "hello", wantOK: false},
		{name: "unsupported host", text: "https://example.com/track/1", wantOK: false},
		{name: "lookalike host", text: "https://open.spotify.com.evil.io/track/1", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			d, link, ok := Recognize(Descriptors(), tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Recognize(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if d.ID != tt.wantID {
				t.Errorf("expected service %s, got %s", tt.wantID, d.ID)
			}
			if link != tt.wantLink {
				t.Errorf("expected link %q, got %q", tt.wantLink, link)
			}
		})
	}

	t.Run("patterns are mutually exclusive", func(t *testing.T) {
		links := []string{
			"https://open.spotify.com/track/1",
			"https://spotify.link/x",
			"https://music.yandex.ru/track/1",
			"https://mts-music-spo.onelink.me/x",
			"https://music.mts.ru/track/1",
		}
		for _, link := range links {
			matches := 0
			for _, d := range Descriptors() {
				if d.Matches(link) {
					matches++
				}
			}
			if matches != 1 {
				t.Errorf("expected exactly one match for %s, got %d", link, matches)
			}
		}
	})

	t.Run("first link wins", func(t *testing.T) {
		d, _, ok := Recognize(Descriptors(), "https://example.com then https://music.mts.ru/track/1")
		if ok {
			t.Errorf("expected only the first link to be considered, got %s", d.ID)
		}
	})
}

func TestRegistry(t *testing.T) {
	reg := NewDefaultRegistry(shared.CredentialsConfig{}, ServiceOpts{})

	t.Run("table order", func(t *testing.T) {
		want := []models.ServiceID{models.Spotify, models.YandexMusic, models.MTSMusic}
		got := reg.Descriptors()
		if len(got) != len(want) {
			t.Fatalf("expected %d descriptors, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], got[i].ID)
			}
		}
	})

	t.Run("Recognize returns the owning service", func(t *testing.T) {
		svc, link, ok := reg.Recognize("see https://music.yandex.com/album/1/track/2")
		if !ok {
			t.Fatal("expected link to be recognized")
		}
		if svc.Descriptor().ID != models.YandexMusic {
			t.Errorf("expected yandex, got %s", svc.Descriptor().ID)
		}
		if link != "https://music.yandex.com/album/1/track/2" {
			t.Errorf("unexpected link %q", link)
		}
	})

	t.Run("Lookup unknown", func(t *testing.T) {
		if _, ok := reg.Lookup("deezer"); ok {
			t.Error("expected lookup of unknown service to fail")
		}
	})
}
