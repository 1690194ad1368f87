package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"github.com/k-negishi/ics-weekly-sheet-exporter/internal/domain"
)

// GrantFunc 対話的にユーザーの認可を得てトークンを取得する
type GrantFunc func(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)

// GoogleAuthorizer 保存済みトークンの再利用と、必要時の対話的な認可を行う
type GoogleAuthorizer struct {
	oauthConfig *oauth2.Config
	store       TokenStore
	grant       GrantFunc
}

// NewGoogleAuthorizer OAuthクライアント情報（installed / web）から認可クライアントを作成
// grant が nil の場合は対話的な認可を行わない
func NewGoogleAuthorizer(credentialsJSON []byte, store TokenStore, grant GrantFunc) (*GoogleAuthorizer, error) {
	oauthConfig, err := google.ConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, domain.NewStageError(domain.ErrAuth, "", fmt.Errorf("OAuthクライアント情報の読み込みに失敗しました: %v", err))
	}

	return &GoogleAuthorizer{
		oauthConfig: oauthConfig,
		store:       store,
		grant:       grant,
	}, nil
}

// TokenSource 保存済みトークンからトークンソースを作成
// トークンがない、または失効している場合は対話的に再認可する
func (a *GoogleAuthorizer) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := a.store.Load(ctx)
	if errors.Is(err, ErrTokenNotFound) {
		log.Info("保存済みのトークンがないため認可を開始します")
		return a.Authorize(ctx)
	}
	if err != nil {
		return nil, domain.NewStageError(domain.ErrAuth, "", err)
	}

	tokenSource := a.oauthConfig.TokenSource(ctx, token)

	// 最初のAPI呼び出しの前にリフレッシュして有効性を確認
	if _, err := tokenSource.Token(); err != nil {
		if isInvalidGrant(err) && a.grant != nil {
			log.Warnf("保存済みのトークンが無効なため再認可します: %v", err)
			return a.Authorize(ctx)
		}
		return nil, domain.NewStageError(domain.ErrAuth, "", fmt.Errorf("トークンの更新に失敗しました: %w", err))
	}

	return tokenSource, nil
}

// Authorize 対話的に認可してトークンを保存する
func (a *GoogleAuthorizer) Authorize(ctx context.Context) (oauth2.TokenSource, error) {
	if a.grant == nil {
		return nil, domain.NewStageError(domain.ErrAuth, "", errors.New("対話的な認可ができない環境です。事前にトークンを保存してください"))
	}

	token, err := a.grant(ctx, a.oauthConfig)
	if err != nil {
		return nil, domain.NewStageError(domain.ErrAuth, "", err)
	}

	if err := a.store.Save(ctx, a.oauthConfig, token); err != nil {
		return nil, domain.NewStageError(domain.ErrAuth, "", err)
	}
	log.Info("トークンを保存しました")

	return a.oauthConfig.TokenSource(ctx, token), nil
}

// isInvalidGrant リフレッシュトークンが失効・取り消し済みか判定
func isInvalidGrant(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return false
	}
	if retrieveErr.ErrorCode == "invalid_grant" || retrieveErr.ErrorCode == "unauthorized_client" {
		return true
	}
	return retrieveErr.Response != nil && retrieveErr.Response.StatusCode == http.StatusUnauthorized
}
