package devops

import (
	"context"
	"fmt"

	"clockzy.com/clockzy/utils"
	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// DBEntry is one database server listed in the SSM parameter.
type DBEntry struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// GetDSN builds a MySQL DSN for dbname; an empty dbname selects no schema.
func (e DBEntry) GetDSN(dbname string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC", e.Username, e.Password, e.Host, dbname)
}

// LoadDBConfig reads the YAML list of database servers stored in the SSM
// parameter paramName.
func LoadDBConfig(ctx context.Context, paramName string) ([]DBEntry, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}

	return ParseDBConfig([]byte(aws.ToString(out.Parameter.Value)))
}

func ParseDBConfig(data []byte) ([]DBEntry, error) {
	var parsed []DBEntry
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return parsed, nil
}

func FindDBEntry(entries []DBEntry, name string) (*DBEntry, error) {
	entry := utils.Find(entries, func(e DBEntry) bool { return e.Name == name })
	if entry == nil {
		return nil, fmt.Errorf("database entry %q not found", name)
	}
	return entry, nil
}
