package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

const keyAttr = "drug_id"

type DynamoConfig struct {
	Region string `split_words:"true" default:"eu-west-1"`
	Table  string `split_words:"true" default:"pharma_products"`
}

// Dynamo persists the product record in a DynamoDB table keyed by drug_id.
// Decision reads use ConsistentRead; stock increments lean on DynamoDB's
// atomic update expressions.
type Dynamo struct {
	client *dynamodb.Client
	table  string
}

type dynamoItem struct {
	DrugID          string  `dynamodbav:"drug_id"`
	ProductName     string  `dynamodbav:"product_name,omitempty"`
	StockLevel      int64   `dynamodbav:"stock_level"`
	CurrentPrice    float64 `dynamodbav:"current_price"`
	CompetitorPrice float64 `dynamodbav:"competitor_price"`
	CostPrice       float64 `dynamodbav:"cost_price"`
	Category        string  `dynamodbav:"category,omitempty"`
}

func NewDynamo(ctx context.Context, cfg DynamoConfig) (*Dynamo, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(strings.TrimSpace(cfg.Region)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewDynamoFromClient(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

func NewDynamoFromClient(client *dynamodb.Client, table string) *Dynamo {
	if strings.TrimSpace(table) == "" {
		table = "pharma_products"
	}
	return &Dynamo{client: client, table: table}
}

func (s *Dynamo) Get(ctx context.Context, id string) (contractx.ProductRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return contractx.ProductRecord{}, fmt.Errorf("dynamodb get: %w", err)
	}
	if len(out.Item) == 0 {
		return contractx.ProductRecord{}, contractx.ErrProductNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return contractx.ProductRecord{}, fmt.Errorf("decode product item: %w", err)
	}
	return contractx.ProductRecord(item), nil
}

func (s *Dynamo) SetPrice(ctx context.Context, id string, price float64) error {
	return s.update(ctx, id, "SET current_price = :p", map[string]ddbtypes.AttributeValue{
		":p": numberAttr(price),
	})
}

func (s *Dynamo) AddStock(ctx context.Context, id string, qty int64) error {
	return s.update(ctx, id, "SET stock_level = stock_level + :q", map[string]ddbtypes.AttributeValue{
		":q": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(qty, 10)},
	})
}

func (s *Dynamo) SetStock(ctx context.Context, id string, qty int64) error {
	return s.update(ctx, id, "SET stock_level = :s", map[string]ddbtypes.AttributeValue{
		":s": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(qty, 10)},
	})
}

func (s *Dynamo) AddCompetitorPrice(ctx context.Context, id string, delta float64) error {
	return s.update(ctx, id, "SET competitor_price = competitor_price + :d", map[string]ddbtypes.AttributeValue{
		":d": numberAttr(delta),
	})
}

func (s *Dynamo) Put(ctx context.Context, rec contractx.ProductRecord) error {
	item, err := attributevalue.MarshalMap(dynamoItem(rec))
	if err != nil {
		return fmt.Errorf("encode product item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("dynamodb put: %w", err)
	}
	return nil
}

func (s *Dynamo) update(ctx context.Context, id, expr string, values map[string]ddbtypes.AttributeValue) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(id),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(" + keyAttr + ")"),
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return contractx.ErrProductNotFound
		}
		return fmt.Errorf("dynamodb update: %w", err)
	}
	return nil
}

func (s *Dynamo) key(id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		keyAttr: &ddbtypes.AttributeValueMemberS{Value: id},
	}
}

func numberAttr(v float64) ddbtypes.AttributeValue {
	return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

var _ contractx.ScenarioStore = (*Dynamo)(nil)
