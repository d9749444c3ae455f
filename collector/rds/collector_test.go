package rds

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloudinv/aws-dep-mapper/collector"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rds.DescribeDBInstancesOutput), args.Error(1)
}

// MockTaggingAPI is a mock implementation of TaggingAPI
type MockTaggingAPI struct {
	mock.Mock
}

func (m *MockTaggingAPI) GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resourcegroupstaggingapi.GetResourcesOutput), args.Error(1)
}

func dbInstancesOutput() *rds.DescribeDBInstancesOutput {
	return &rds.DescribeDBInstancesOutput{
		DBInstances: []rdstypes.DBInstance{
			{
				DBInstanceIdentifier: aws.String("app-db"),
				DBInstanceArn:        aws.String("arn:aws:rds:us-east-1:1:db:app-db"),
				Engine:               aws.String("postgres"),
				EngineVersion:        aws.String("16.2"),
				DBInstanceClass:      aws.String("db.t3.medium"),
				DBInstanceStatus:     aws.String("available"),
				MultiAZ:              aws.Bool(true),
				StorageType:          aws.String("gp3"),
				Endpoint:             &rdstypes.Endpoint{Address: aws.String("app-db.example.com"), Port: aws.Int32(5432)},
				VpcSecurityGroups: []rdstypes.VpcSecurityGroupMembership{
					{VpcSecurityGroupId: aws.String("sg-a")},
					{VpcSecurityGroupId: aws.String("sg-b")},
				},
				DBSubnetGroup: &rdstypes.DBSubnetGroup{
					VpcId:             aws.String("vpc-1"),
					DBSubnetGroupName: aws.String("main"),
				},
			},
			{
				DBInstanceIdentifier: aws.String("legacy-db"),
				DBInstanceArn:        aws.String("arn:aws:rds:us-east-1:1:db:legacy-db"),
				Engine:               aws.String("mysql"),
			},
		},
	}
}

func TestCollector_Service(t *testing.T) {
	assert.Equal(t, "RDS", NewCollector().Service())
}

func TestCollector_Collect(t *testing.T) {
	mockAPI := new(MockAPI)
	ctx := context.Background()
	mockAPI.On("DescribeDBInstances", ctx, mock.Anything, mock.Anything).Return(dbInstancesOutput(), nil)

	c := &Collector{client: mockAPI, taggingClient: new(MockTaggingAPI)}
	records, err := c.Collect(ctx, "us-east-1", collector.Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	rec := records[0]
	get := func(col string) string {
		v, _ := rec.Get(col)
		return v
	}
	assert.Equal(t, "RDS", get("Service"))
	assert.Equal(t, "app-db", get("Resource ID"))
	assert.Equal(t, "postgres", get("Engine"))
	assert.Equal(t, "available", get("Status"))
	assert.Equal(t, "true", get("Multi-AZ"))
	assert.Equal(t, "app-db.example.com", get("Endpoint"))
	assert.Equal(t, "5432", get("Port"))
	assert.Equal(t, "sg-a, sg-b", get("Security Groups"))
	assert.Equal(t, "vpc-1", get("VPC ID"))
	assert.Equal(t, "main", get("Subnet Group"))

	mockAPI.AssertExpectations(t)
}

func TestCollector_CollectWithTagFilter(t *testing.T) {
	mockAPI := new(MockAPI)
	mockTagging := new(MockTaggingAPI)
	ctx := context.Background()

	mockTagging.On("GetResources", ctx, mock.Anything, mock.Anything).Return(
		&resourcegroupstaggingapi.GetResourcesOutput{
			ResourceTagMappingList: []taggingtypes.ResourceTagMapping{
				{ResourceARN: aws.String("arn:aws:rds:us-east-1:1:db:app-db")},
			},
		}, nil)
	mockAPI.On("DescribeDBInstances", ctx, mock.Anything, mock.Anything).Return(dbInstancesOutput(), nil)

	c := &Collector{client: mockAPI, taggingClient: mockTagging}
	records, err := c.Collect(ctx, "us-east-1", collector.Options{
		TagFilters: map[string]string{"Environment": "production"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1, "untagged instances must be filtered out")

	id, _ := records[0].Get("Resource ID")
	assert.Equal(t, "app-db", id)

	mockTagging.AssertExpectations(t)
}

func TestCollector_CollectNoTaggedResources(t *testing.T) {
	mockTagging := new(MockTaggingAPI)
	ctx := context.Background()

	mockTagging.On("GetResources", ctx, mock.Anything, mock.Anything).Return(
		&resourcegroupstaggingapi.GetResourcesOutput{}, nil)

	c := &Collector{client: new(MockAPI), taggingClient: mockTagging}
	records, err := c.Collect(ctx, "us-east-1", collector.Options{
		TagFilters: map[string]string{"Environment": "production"},
	})
	require.NoError(t, err)
	assert.Empty(t, records, "no tag matches means nothing to describe")
}
