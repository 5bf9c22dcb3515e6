package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"go-gin-gorm-notes/internal/core/config"
	"go-gin-gorm-notes/internal/domain"
)

var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrNoEmail         = errors.New("provider returned no email")
	ErrUnverifiedEmail = errors.New("provider email is not verified")
)

// Profile 是第三方账号里我们关心的字段
type Profile struct {
	Provider string
	Email    string
	Name     string
	Image    string
}

type provider struct {
	cfg        *oauth2.Config
	profileURL string
}

type Providers struct {
	m map[string]provider
}

func New(c config.OAuth) *Providers {
	p := &Providers{m: map[string]provider{}}
	add := func(name string, pc config.OAuthProvider, ep oauth2.Endpoint) {
		if !pc.Enabled {
			return
		}
		if pc.AuthURL != "" {
			ep.AuthURL = pc.AuthURL
		}
		if pc.TokenURL != "" {
			ep.TokenURL = pc.TokenURL
		}
		p.m[name] = provider{
			cfg: &oauth2.Config{
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				RedirectURL:  pc.RedirectURL,
				Scopes:       splitScopes(pc.Scopes),
				Endpoint:     ep,
			},
			profileURL: pc.ProfileURL,
		}
	}
	add(domain.MethodGitHub, c.GitHub, github.Endpoint)
	add(domain.MethodGoogle, c.Google, google.Endpoint)
	return p
}

func splitScopes(s string) []string {
	var out []string
	for _, sc := range strings.Split(s, ",") {
		if sc = strings.TrimSpace(sc); sc != "" {
			out = append(out, sc)
		}
	}
	return out
}

func (p *Providers) get(name string) (provider, error) {
	pr, ok := p.m[strings.ToLower(name)]
	if !ok {
		return provider{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return pr, nil
}

func (p *Providers) Enabled(name string) bool {
	_, err := p.get(name)
	return err == nil
}

func (p *Providers) AuthCodeURL(name, state string) (string, error) {
	pr, err := p.get(name)
	if err != nil {
		return "", err
	}
	return pr.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// SignIn 用回调 code 换 token，再拉取用户资料
func (p *Providers) SignIn(ctx context.Context, name, code string) (*Profile, error) {
	pr, err := p.get(name)
	if err != nil {
		return nil, err
	}
	tok, err := pr.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	client := pr.cfg.Client(ctx, tok)

	prof := &Profile{Provider: strings.ToLower(name)}
	switch prof.Provider {
	case domain.MethodGitHub:
		var data struct {
			Login     string `json:"login"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			AvatarURL string `json:"avatar_url"`
		}
		if err := getJSON(client, pr.profileURL, &data); err != nil {
			return nil, err
		}
		prof.Name, prof.Email, prof.Image = data.Name, data.Email, data.AvatarURL
		if prof.Name == "" {
			prof.Name = data.Login
		}
		if prof.Email == "" {
			// 邮箱设为私密时需要单独拉取
			if prof.Email, err = githubPrimaryEmail(client, strings.TrimRight(pr.profileURL, "/")+"/emails"); err != nil {
				return nil, err
			}
		}
	case domain.MethodGoogle:
		// v2 userinfo 返回 verified_email，OIDC userinfo 返回 email_verified
		var data struct {
			Email         string `json:"email"`
			VerifiedEmail bool   `json:"verified_email"`
			EmailVerified bool   `json:"email_verified"`
			Name          string `json:"name"`
			Picture       string `json:"picture"`
		}
		if err := getJSON(client, pr.profileURL, &data); err != nil {
			return nil, err
		}
		if data.Email != "" && !data.VerifiedEmail && !data.EmailVerified {
			return nil, ErrUnverifiedEmail
		}
		prof.Name, prof.Email, prof.Image = data.Name, data.Email, data.Picture
	}
	if prof.Email == "" {
		return nil, ErrNoEmail
	}
	return prof, nil
}

func githubPrimaryEmail(client *http.Client, url string) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(client, url, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", ErrNoEmail
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("profile api returned status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NewState 生成防 CSRF 的随机 state
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
