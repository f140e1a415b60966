// Package dynamo serves families from a DynamoDB table.
//
// Each family is one item keyed by PK = "FAMILY#<id>" and SK = "METADATA".
// The family itself is stored in the Family attribute using the dynamodbav
// tags of family.Family, so a single GetItem loads a whole family.
package dynamo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

const (
	entityFamily = "FAMILY"
	metadataSK   = "METADATA"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Config selects the table and, for local development, the endpoint.
type Config struct {
	Table    string
	Region   string
	Endpoint string // e.g. http://localhost:8000 for DynamoDB Local
}

// familyItem is the DynamoDB item layout.
type familyItem struct {
	PK         string         `dynamodbav:"PK"`
	SK         string         `dynamodbav:"SK"`
	EntityType string         `dynamodbav:"EntityType"`
	Family     *family.Family `dynamodbav:"Family"`
}

func familyPK(id string) string { return "FAMILY#" + id }

// Store reads families from a table.
type Store struct {
	client API
	table  string
}

// Open loads the default AWS configuration and returns a store for cfg.Table.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Table == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "dynamodb table name is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load aws config")
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return New(client, cfg.Table), nil
}

// New returns a store over an existing client.
func New(client API, table string) *Store {
	return &Store{client: client, table: table}
}

// Family loads the item for id.
func (s *Store) Family(ctx context.Context, id string) (*family.Family, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: familyPK(id)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "get family %s", id)
	}
	if len(out.Item) == 0 {
		return nil, errors.New(errors.ErrCodeFamilyNotFound, "family %q not found or access denied", id)
	}
	f, err := decode(out.Item)
	if err != nil {
		return nil, fmt.Errorf("family %s: %w", id, err)
	}
	return f, nil
}

// Families scans the table for family items and returns them ordered by id.
func (s *Store) Families(ctx context.Context) ([]*family.Family, error) {
	p := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("EntityType = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: entityFamily},
		},
	})

	var out []*family.Family
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "scan families")
		}
		for _, item := range page.Items {
			f, err := decode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b *family.Family) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Put writes f, replacing any existing item.
func (s *Store) Put(ctx context.Context, f *family.Family) error {
	av, err := attributevalue.MarshalMap(familyItem{
		PK:         familyPK(f.ID),
		SK:         metadataSK,
		EntityType: entityFamily,
		Family:     f,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal family %s", f.ID)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "put family %s", f.ID)
	}
	return nil
}

// Close does nothing; the AWS client holds no connections to release.
func (s *Store) Close() error { return nil }

func decode(item map[string]types.AttributeValue) (*family.Family, error) {
	var it familyItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "unmarshal family item")
	}
	if it.Family == nil {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "item %s has no family", it.PK)
	}
	return it.Family, nil
}
