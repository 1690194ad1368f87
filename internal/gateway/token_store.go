package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"golang.org/x/oauth2"
)

// ErrTokenNotFound 保存済みのトークンが存在しない
var ErrTokenNotFound = errors.New("保存済みのトークンがありません")

// authorizedUser 保存するトークンの形式（Googleの authorized_user 形式と互換）
type authorizedUser struct {
	Type         string `json:"type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// TokenStore リフレッシュトークンの保存先
type TokenStore interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) error
}

// encodeToken トークンを authorized_user 形式のJSONに変換
func encodeToken(conf *oauth2.Config, token *oauth2.Token) ([]byte, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, errors.New("リフレッシュトークンがありません")
	}
	return json.Marshal(authorizedUser{
		Type:         "authorized_user",
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		RefreshToken: token.RefreshToken,
	})
}

// decodeToken authorized_user 形式のJSONからトークンを復元
func decodeToken(data []byte) (*oauth2.Token, error) {
	var user authorizedUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("トークンのJSON解析に失敗しました: %v", err)
	}
	if user.RefreshToken == "" {
		return nil, ErrTokenNotFound
	}
	return &oauth2.Token{RefreshToken: user.RefreshToken}, nil
}

// FileTokenStore ローカルファイルにトークンを保存する
type FileTokenStore struct {
	path string
}

// NewFileTokenStore ファイルトークンストアを作成
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load ファイルからトークンを読み込む
func (s *FileTokenStore) Load(_ context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("トークンファイル %s の読み込みに失敗しました: %v", s.path, err)
	}
	return decodeToken(data)
}

// Save トークンを 0600 のファイルに保存
func (s *FileTokenStore) Save(_ context.Context, conf *oauth2.Config, token *oauth2.Token) error {
	data, err := encodeToken(conf, token)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("トークン保存先の作成に失敗しました: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("トークンファイル %s の書き込みに失敗しました: %v", s.path, err)
	}
	return nil
}

// SSMParameterClient Parameter Storeの読み書きに使うクライアント
type SSMParameterClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// SSMTokenStore Parameter Store（SecureString）にトークンを保存する
type SSMTokenStore struct {
	client SSMParameterClient
	name   string
}

// NewSSMTokenStore SSMトークンストアを作成
func NewSSMTokenStore(client SSMParameterClient, name string) *SSMTokenStore {
	return &SSMTokenStore{client: client, name: name}
}

// Load Parameter Storeからトークンを読み込む
func (s *SSMTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	result, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("パラメータ %s の取得に失敗しました: %v", s.name, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return nil, ErrTokenNotFound
	}
	return decodeToken([]byte(*result.Parameter.Value))
}

// Save トークンをParameter Storeに上書き保存
func (s *SSMTokenStore) Save(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) error {
	data, err := encodeToken(conf, token)
	if err != nil {
		return err
	}

	_, err = s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(s.name),
		Value:     aws.String(string(data)),
		Type:      types.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("パラメータ %s の保存に失敗しました: %v", s.name, err)
	}
	return nil
}
