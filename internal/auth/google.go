package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"taskBuddy/internal/logger"
	"taskBuddy/internal/models/user"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider выполняет интерактивный вход через Google OAuth:
// локальный loopback-сервер ловит redirect с кодом, код меняется на токен,
// по токену запрашивается userinfo.
type GoogleProvider struct {
	config *oauth2.Config
	port   string
}

func NewGoogleProvider(clientID, clientSecret, redirectPort string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  fmt.Sprintf("http://localhost:%s/callback", redirectPort),
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		port: redirectPort,
	}
}

func (p *GoogleProvider) SignIn(ctx context.Context) (*user.User, error) {
	code, err := p.waitForCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("ожидание кода авторизации: %w", err)
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("обмен кода на токен: %w", err)
	}

	u, err := p.fetchUserinfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("запрос userinfo: %w", err)
	}

	logger.Info("Auth: Успешный вход")
	return u, nil
}

// waitForCode поднимает loopback-сервер, печатает ссылку для входа и ждёт
// redirect с кодом либо отмены контекста.
func (p *GoogleProvider) waitForCode(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", "localhost:"+p.port)
	if err != nil {
		return "", fmt.Errorf("loopback-порт %s занят: %w", p.port, err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "authorization code missing", http.StatusBadRequest)
			errCh <- fmt.Errorf("redirect без кода авторизации")
			return
		}
		fmt.Fprintln(w, "Login complete, you can close this tab.")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	authURL := p.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	logger.Info("Auth: Откройте ссылку для входа: " + authURL)

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *GoogleProvider) fetchUserinfo(ctx context.Context, token *oauth2.Token) (*user.User, error) {
	client := p.config.Client(ctx, token)

	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("статус userinfo: %d", resp.StatusCode)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("разбор userinfo: %w", err)
	}

	return &user.User{
		UID:         info.ID,
		Email:       info.Email,
		DisplayName: info.Name,
		PhotoURL:    info.Picture,
	}, nil
}
