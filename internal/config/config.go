package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.yaml"
	parameterPrefix   = "/ics-weekly-sheet-exporter"
)

// SSMParameterGetter Parameter Storeからの取得に使うクライアント
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config アプリケーション設定構造体
type Config struct {
	// Google Sheets設定
	SpreadsheetID string `yaml:"spreadsheet_id"`
	HeaderRange   string `yaml:"header_range"`
	AppendRange   string `yaml:"append_range"`

	// カレンダーフォルダ設定
	FolderPath    string `yaml:"folder_path"`
	FileExtension string `yaml:"file_extension"`
	Timezone      string `yaml:"timezone"`

	// Google認証設定
	CredentialsPath   string `yaml:"credentials_path"`
	GoogleCredentials string `yaml:"google_credentials"`
	TokenPath         string `yaml:"token_path"`
	TokenParam        string `yaml:"token_param"`

	// その他設定
	LogLevel string `yaml:"log_level"`
	Schedule string `yaml:"schedule"`

	// AWS関連（本番環境でのみ使用）
	awsConfig *aws.Config
	ssmClient SSMParameterGetter
}

// Load 環境に応じて設定を読み込み
func Load() (*Config, error) {
	// AWS Lambda環境かどうか判定
	if IsLambda() {
		return loadAWSConfig()
	}
	return loadLocalConfig()
}

// IsLambda AWS Lambda上で実行されているか
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// defaultConfig 既定値のみを設定した設定
func defaultConfig() *Config {
	return &Config{
		HeaderRange:     "Sheet1!A1",
		AppendRange:     "Sheet1!A2",
		FileExtension:   ".ics",
		Timezone:        "America/Chicago",
		CredentialsPath: "credentials.json",
		TokenPath:       "token.json",
		TokenParam:      parameterPrefix + "/token",
		LogLevel:        "INFO",
		Schedule:        "0 18 * * 5",
	}
}

// loadLocalConfig ローカル開発環境用の設定読み込み
// 優先順位: 環境変数 > 設定ファイル > 既定値
func loadLocalConfig() (*Config, error) {
	// .envファイルを読み込み（存在する場合のみ）
	if err := godotenv.Load(); err != nil {
		log.Debugf(".envファイルが見つかりません: %v", err)
	}

	cfg := defaultConfig()
	if err := cfg.loadFile(getEnvOrDefault("CONFIG_FILE", defaultConfigFile)); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAWSConfig AWS Lambda環境用の設定読み込み
func loadAWSConfig() (*Config, error) {
	// AWS設定を初期化
	awsConfig, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %v", err)
	}

	cfg := defaultConfig()
	cfg.applyEnv()
	cfg.awsConfig = &awsConfig
	cfg.ssmClient = ssm.NewFromConfig(awsConfig)

	// Parameter Storeから機密情報を取得
	if err := cfg.loadFromParameterStore(); err != nil {
		return nil, fmt.Errorf("Parameter Storeからの設定読み込みに失敗しました: %v", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile YAML設定ファイルを読み込み（存在しない場合は何もしない）
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("設定ファイル %s の読み込みに失敗しました: %v", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイル %s の解析に失敗しました: %v", path, err)
	}
	log.WithField("path", path).Debug("設定ファイルを読み込みました")
	return nil
}

// applyEnv 環境変数で設定を上書き
func (c *Config) applyEnv() {
	c.SpreadsheetID = getEnvOrDefault("SPREADSHEET_ID", c.SpreadsheetID)
	c.HeaderRange = getEnvOrDefault("HEADER_RANGE", c.HeaderRange)
	c.AppendRange = getEnvOrDefault("APPEND_RANGE", c.AppendRange)
	c.FolderPath = getEnvOrDefault("FOLDER_PATH", c.FolderPath)
	c.FileExtension = getEnvOrDefault("FILE_EXTENSION", c.FileExtension)
	c.Timezone = getEnvOrDefault("TIMEZONE", c.Timezone)
	c.CredentialsPath = getEnvOrDefault("CREDENTIALS_PATH", c.CredentialsPath)
	c.GoogleCredentials = getEnvOrDefault("GOOGLE_CREDENTIALS", c.GoogleCredentials)
	c.TokenPath = getEnvOrDefault("TOKEN_PATH", c.TokenPath)
	c.TokenParam = getEnvOrDefault("TOKEN_PARAM", c.TokenParam)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.Schedule = getEnvOrDefault("SCHEDULE", c.Schedule)
}

// loadFromParameterStore Parameter Storeから機密情報を読み込み
func (c *Config) loadFromParameterStore() error {
	ctx := context.TODO()

	// Google OAuthクライアント情報を取得
	if c.GoogleCredentials == "" {
		googleCredsParam := getEnvOrDefault("GOOGLE_CREDS_PARAM", parameterPrefix+"/google-creds")
		googleCreds, err := c.getParameter(ctx, googleCredsParam, true)
		if err != nil {
			return fmt.Errorf("Google認証情報の取得に失敗しました: %v", err)
		}
		c.GoogleCredentials = googleCreds
	}

	// スプレッドシートIDを取得
	if c.SpreadsheetID == "" {
		spreadsheetParam := getEnvOrDefault("SPREADSHEET_ID_PARAM", parameterPrefix+"/spreadsheet-id")
		spreadsheetID, err := c.getParameter(ctx, spreadsheetParam, false)
		if err != nil {
			return fmt.Errorf("スプレッドシートIDの取得に失敗しました: %v", err)
		}
		c.SpreadsheetID = spreadsheetID
	}

	return nil
}

// getParameter Parameter Storeから指定されたパラメータを取得
func (c *Config) getParameter(ctx context.Context, paramName string, withDecryption bool) (string, error) {
	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(withDecryption),
	}

	result, err := c.ssmClient.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("パラメータ %s の取得に失敗しました: %v", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("パラメータ %s が空の値です", paramName)
	}

	return *result.Parameter.Value, nil
}

// validate 必須設定項目の確認
func (c *Config) validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("SPREADSHEET_ID環境変数が設定されていません")
	}
	if c.FolderPath == "" {
		return fmt.Errorf("FOLDER_PATH環境変数が設定されていません")
	}
	if c.FileExtension == "" {
		return fmt.Errorf("FILE_EXTENSIONが空です")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("タイムゾーン %s の読み込みに失敗しました: %v", c.Timezone, err)
	}
	return nil
}

// Location 設定されたタイムゾーン
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("タイムゾーン %s の読み込みに失敗しました: %v", c.Timezone, err)
	}
	return loc, nil
}

// CredentialsJSON OAuthクライアント情報のJSON（インライン指定がファイルより優先）
func (c *Config) CredentialsJSON() ([]byte, error) {
	if c.GoogleCredentials != "" {
		return []byte(c.GoogleCredentials), nil
	}

	data, err := os.ReadFile(c.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("認証情報ファイル %s の読み込みに失敗しました: %v", c.CredentialsPath, err)
	}
	return data, nil
}

// AWSConfig Lambda環境で読み込んだAWS設定（ローカルでは false）
func (c *Config) AWSConfig() (aws.Config, bool) {
	if c.awsConfig == nil {
		return aws.Config{}, false
	}
	return *c.awsConfig, true
}

// getEnvOrDefault 環境変数を取得し、存在しない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
