package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const callbackPath = "/oauth2callback"

// LoopbackGrant ループバックアドレスでリダイレクトを受けるインストールアプリ型の認可
type LoopbackGrant struct {
	out     io.Writer
	timeout time.Duration
}

type callbackResult struct {
	code string
	err  error
}

// NewLoopbackGrant 認可URLを out に表示するループバック認可を作成
func NewLoopbackGrant(out io.Writer) *LoopbackGrant {
	return &LoopbackGrant{
		out:     out,
		timeout: 5 * time.Minute,
	}
}

// Grant 認可URLを表示し、コールバックで受け取った認可コードをトークンに交換
func (g *LoopbackGrant) Grant(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("コールバック用ポートの確保に失敗しました: %v", err)
	}

	redirectConf := *conf
	redirectConf.RedirectURL = fmt.Sprintf("http://%s%s", listener.Addr().String(), callbackPath)

	state := uuid.New().String()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		result := callbackResult{code: query.Get("code")}
		switch {
		case query.Get("state") != state:
			result.err = errors.New("stateが一致しません")
		case query.Get("error") != "":
			result.err = fmt.Errorf("認可が拒否されました: %s", query.Get("error"))
		case result.code == "":
			result.err = errors.New("認可コードがありません")
		}

		if result.err != nil {
			http.Error(w, result.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "認可が完了しました。このウィンドウを閉じてください。")
		}

		select {
		case results <- result:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("コールバックサーバーが停止しました: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := redirectConf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	fmt.Fprintf(g.out, "次のURLをブラウザで開いて認可してください:\n%s\n", authURL)

	waitCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var result callbackResult
	select {
	case <-waitCtx.Done():
		return nil, fmt.Errorf("認可の待機を中断しました: %w", waitCtx.Err())
	case result = <-results:
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := redirectConf.Exchange(ctx, result.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("認可コードの交換に失敗しました: %w", err)
	}
	return token, nil
}
