package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"archatlas/internal/domain"
	"archatlas/internal/logging"
)

// Database is the slice of RDS state kept for edge wiring.
type Database struct {
	ID        string
	Name      string
	Engine    string
	Port      int
	VPCID     string
	Public    bool
	Encrypted bool
}

// CollectDatabases lists RDS instances.
func CollectDatabases(ctx context.Context) ([]Database, error) {
	client, err := GetAWSClient(ctx, "rds")
	if err != nil {
		return nil, fmt.Errorf("failed to get RDS client: %w", err)
	}
	rdsSvc := client.(*rds.Client)

	var databases []Database
	var marker *string
	for {
		output, err := rdsSvc.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("failed to describe DB instances: %w", err)
		}
		for _, db := range output.DBInstances {
			databases = append(databases, extractDatabase(db))
		}
		if output.Marker == nil {
			break
		}
		marker = output.Marker
	}

	logging.LogInfo("collected RDS instances", map[string]any{"count": len(databases)})
	return databases, nil
}

func extractDatabase(db rdstypes.DBInstance) Database {
	out := Database{
		ID:        aws.ToString(db.DBInstanceIdentifier),
		Name:      aws.ToString(db.DBInstanceIdentifier),
		Engine:    aws.ToString(db.Engine),
		Public:    aws.ToBool(db.PubliclyAccessible),
		Encrypted: aws.ToBool(db.StorageEncrypted),
	}
	if db.Endpoint != nil {
		out.Port = int(aws.ToInt32(db.Endpoint.Port))
	}
	if db.DBSubnetGroup != nil {
		out.VPCID = aws.ToString(db.DBSubnetGroup.VpcId)
	}
	return out
}

// DatabaseComponent converts an RDS instance into a data component.
// Storage encryption shows up as feature tags the threat generator reads.
func DatabaseComponent(db Database) domain.Component {
	var features []string
	if db.Encrypted {
		features = append(features, "encryption")
	}
	if !db.Public {
		features = append(features, "private ip")
	}
	return domain.Component{
		ID:       "rds-" + db.ID,
		Type:     domain.ComponentTypeData,
		Name:     db.Name + " Database",
		Category: "Data Stores",
		Zone:     "Data",
		Metadata: domain.Metadata{
			Vendor:   "AWS RDS (" + db.Engine + ")",
			Features: features,
			Exposed:  db.Public,
		},
	}
}

// CollectTables lists DynamoDB tables as data components. Server-side
// encryption with a customer key maps to the cmek feature.
func CollectTables(ctx context.Context) ([]domain.Component, error) {
	client, err := GetAWSClient(ctx, "dynamodb")
	if err != nil {
		return nil, fmt.Errorf("failed to get DynamoDB client: %w", err)
	}
	dynamoSvc := client.(*dynamodb.Client)

	var components []domain.Component
	var start *string
	for {
		output, err := dynamoSvc.ListTables(ctx, &dynamodb.ListTablesInput{ExclusiveStartTableName: start})
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		for _, name := range output.TableNames {
			features := []string{"encryption"}
			desc, err := dynamoSvc.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
			if err != nil {
				logging.LogWarn("failed to describe table", map[string]any{"table": name, "error": err.Error()})
			} else if desc.Table != nil && desc.Table.SSEDescription != nil && desc.Table.SSEDescription.KMSMasterKeyArn != nil {
				features = append(features, "cmek")
			}
			components = append(components, domain.Component{
				ID:       "dynamodb-" + name,
				Type:     domain.ComponentTypeData,
				Name:     name + " Table",
				Category: "Data Stores",
				Zone:     "Data",
				Metadata: domain.Metadata{
					Vendor:   "AWS DynamoDB",
					Features: features,
				},
			})
		}
		if output.LastEvaluatedTableName == nil {
			break
		}
		start = output.LastEvaluatedTableName
	}

	logging.LogInfo("collected DynamoDB tables", map[string]any{"count": len(components)})
	return components, nil
}

// CollectBuckets lists S3 buckets as object storage components. Buckets
// encrypted with KMS get the cmek feature.
func CollectBuckets(ctx context.Context) ([]domain.Component, error) {
	client, err := GetAWSClient(ctx, "s3")
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 client: %w", err)
	}
	s3Svc := client.(*s3.Client)

	output, err := s3Svc.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	var components []domain.Component
	for _, bucket := range output.Buckets {
		name := aws.ToString(bucket.Name)
		features := []string{"encryption"}
		enc, err := s3Svc.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(name)})
		if err == nil && enc.ServerSideEncryptionConfiguration != nil {
			for _, rule := range enc.ServerSideEncryptionConfiguration.Rules {
				if rule.ApplyServerSideEncryptionByDefault != nil &&
					strings.Contains(string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm), "kms") {
					features = append(features, "cmek")
				}
			}
		}
		components = append(components, domain.Component{
			ID:       "s3-" + name,
			Type:     domain.ComponentTypeData,
			Name:     name + " Object Storage",
			Category: "Data Stores",
			Zone:     "Data",
			Metadata: domain.Metadata{
				Vendor:   "AWS S3",
				Features: features,
			},
		})
	}

	logging.LogInfo("collected S3 buckets", map[string]any{"count": len(components)})
	return components, nil
}
