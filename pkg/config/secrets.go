package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/spf13/viper"
)

// secretGetter es el subconjunto del cliente de Secrets Manager que usamos.
type secretGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// LoadWithSecrets carga la configuración y, si AWS_SECRET_ID está definido, aplica encima
// las claves del secreto JSON (ej. {"DB_PASSWORD": "...", "JWT_SECRET": "..."}).
func LoadWithSecrets(ctx context.Context) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.AWS.SecretID == "" {
		return cfg, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("config: cargar credenciales AWS: %w", err)
	}
	return applySecret(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.AWS.SecretID)
}

func applySecret(ctx context.Context, client secretGetter, secretID string) (*Config, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("config: leer secreto %s: %w", secretID, err)
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &values); err != nil {
		return nil, fmt.Errorf("config: secreto %s no es JSON plano: %w", secretID, err)
	}
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return LoadWith(v)
}
