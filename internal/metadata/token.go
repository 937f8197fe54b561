package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TokenStore persists the synchronization watermark of incremental
// reconciliation jobs. The token is opaque; whatever the source system
// hands out as a change marker is stored verbatim and replayed on the
// next run.
type TokenStore interface {
	Token(ctx context.Context, job string) (string, error)
	SetToken(ctx context.Context, job, token string) error
}

// zuluLayout renders a generalized time with a literal trailing Z, the
// shape directory servers hand out in changelog timestamps.
const zuluLayout = "20060102150405Z"

// ZuluToken renders t as a generalized-time watermark in UTC. Directory
// sources that key incremental runs on a timestamp rather than an opaque
// cookie expect this shape.
func ZuluToken(t time.Time) string {
	return t.UTC().Format(zuluLayout)
}

// ParseZuluToken reverses ZuluToken. An empty token yields the zero time
// so a first run scans everything.
func ParseZuluToken(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(zuluLayout, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("metadata: watermark %q: %w", token, err)
	}
	return t, nil
}

// DynamoTokenStore keeps watermarks in a DynamoDB table keyed by job id.
type DynamoTokenStore struct {
	table  string
	client *dynamodb.Client
}

func NewDynamoTokenStore(ctx context.Context, table, region, profile string) (*DynamoTokenStore, error) {
	if table == "" {
		return nil, fmt.Errorf("metadata: token store requires a table")
	}
	if region == "" {
		region = "us-east-1"
	}
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(region))
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metadata: unable to load AWS config: %w", err)
	}
	return &DynamoTokenStore{table: table, client: dynamodb.NewFromConfig(cfg)}, nil
}

// Token returns the stored watermark of the job, empty when the job never
// ran.
func (s *DynamoTokenStore) Token(ctx context.Context, job string) (string, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]dbtypes.AttributeValue{
			"JobID": &dbtypes.AttributeValueMemberS{Value: job},
		},
	})
	if err != nil {
		return "", fmt.Errorf("metadata: token of %s: %w", job, err)
	}
	if result.Item == nil {
		return "", nil
	}
	token, ok := result.Item["Token"].(*dbtypes.AttributeValueMemberS)
	if !ok {
		return "", nil
	}
	return token.Value, nil
}

func (s *DynamoTokenStore) SetToken(ctx context.Context, job, token string) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]dbtypes.AttributeValue{
			"JobID":   &dbtypes.AttributeValueMemberS{Value: job},
			"Token":   &dbtypes.AttributeValueMemberS{Value: token},
			"Updated": &dbtypes.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("metadata: set token of %s: %w", job, err)
	}
	return nil
}
