package elbv2

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloudinv/aws-dep-mapper/collector"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancingv2.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeLoadBalancersOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticloadbalancingv2.DescribeLoadBalancersOutput), args.Error(1)
}

func (m *MockAPI) DescribeTargetGroups(ctx context.Context, params *elasticloadbalancingv2.DescribeTargetGroupsInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeTargetGroupsOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticloadbalancingv2.DescribeTargetGroupsOutput), args.Error(1)
}

func (m *MockAPI) DescribeListeners(ctx context.Context, params *elasticloadbalancingv2.DescribeListenersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeListenersOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticloadbalancingv2.DescribeListenersOutput), args.Error(1)
}

func (m *MockAPI) DescribeTargetHealth(ctx context.Context, params *elasticloadbalancingv2.DescribeTargetHealthInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeTargetHealthOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticloadbalancingv2.DescribeTargetHealthOutput), args.Error(1)
}

func TestLoadBalancerCollector_Service(t *testing.T) {
	assert.Equal(t, "ELB", NewLoadBalancerCollector().Service())
}

func TestLoadBalancerCollector_Collect(t *testing.T) {
	mockAPI := new(MockAPI)
	ctx := context.Background()

	mockAPI.On("DescribeLoadBalancers", ctx, mock.Anything, mock.Anything).Return(
		&elasticloadbalancingv2.DescribeLoadBalancersOutput{
			LoadBalancers: []elbv2types.LoadBalancer{{
				LoadBalancerArn:  aws.String("arn:aws:elasticloadbalancing:us-east-1:1:loadbalancer/app/web/111"),
				LoadBalancerName: aws.String("web"),
				Type:             elbv2types.LoadBalancerTypeEnumApplication,
				DNSName:          aws.String("web.example.com"),
				Scheme:           elbv2types.LoadBalancerSchemeEnumInternetFacing,
				VpcId:            aws.String("vpc-1"),
			}},
		}, nil)
	mockAPI.On("DescribeTargetGroups", ctx, mock.Anything, mock.Anything).Return(
		&elasticloadbalancingv2.DescribeTargetGroupsOutput{
			TargetGroups: []elbv2types.TargetGroup{{
				TargetGroupArn:  aws.String("arn:tg-1"),
				TargetGroupName: aws.String("web-tg"),
			}},
		}, nil)
	mockAPI.On("DescribeListeners", ctx, mock.Anything, mock.Anything).Return(
		&elasticloadbalancingv2.DescribeListenersOutput{
			Listeners: []elbv2types.Listener{{
				Protocol: elbv2types.ProtocolEnumHttps,
				Port:     aws.Int32(443),
				Certificates: []elbv2types.Certificate{{
					CertificateArn: aws.String("arn:aws:acm:us-east-1:1:certificate/cert-1"),
				}},
			}},
		}, nil)

	c := &LoadBalancerCollector{client: mockAPI}
	records, err := c.Collect(ctx, "us-east-1", collector.Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	get := func(col string) string {
		v, _ := rec.Get(col)
		return v
	}
	assert.Equal(t, "us-east-1", get("Region"))
	assert.Equal(t, "ELB", get("Service"))
	assert.Equal(t, "web", get("Resource Name"))
	assert.Equal(t, "arn:aws:elasticloadbalancing:us-east-1:1:loadbalancer/app/web/111", get("Resource ID"))
	assert.Equal(t, "application", get("Type"))
	assert.Equal(t, "internet-facing", get("Scheme"))
	assert.Equal(t, "vpc-1", get("VPC ID"))
	assert.Equal(t, "HTTPS; 443", get("Listeners"))
	assert.Equal(t, "cert-1", get("SSL Certificates"))
	assert.Equal(t, "web-tg", get("Target Group Names"))
	assert.Equal(t, "arn:tg-1", get("Target Group IDs"))

	mockAPI.AssertExpectations(t)
}

func TestLoadBalancerCollector_CollectError(t *testing.T) {
	mockAPI := new(MockAPI)
	mockAPI.On("DescribeLoadBalancers", mock.Anything, mock.Anything, mock.Anything).Return(
		nil, errors.New("access denied"))

	c := &LoadBalancerCollector{client: mockAPI}
	_, err := c.Collect(context.Background(), "us-east-1", collector.Options{})
	assert.Error(t, err)
}

func TestTargetGroupCollector_Service(t *testing.T) {
	assert.Equal(t, "TargetGroup", NewTargetGroupCollector().Service())
}

func TestTargetGroupCollector_Collect(t *testing.T) {
	mockAPI := new(MockAPI)
	ctx := context.Background()

	mockAPI.On("DescribeTargetGroups", ctx, mock.Anything, mock.Anything).Return(
		&elasticloadbalancingv2.DescribeTargetGroupsOutput{
			TargetGroups: []elbv2types.TargetGroup{{
				TargetGroupArn:      aws.String("arn:tg-1"),
				TargetGroupName:     aws.String("web-tg"),
				Protocol:            elbv2types.ProtocolEnumHttp,
				Port:                aws.Int32(80),
				VpcId:               aws.String("vpc-1"),
				HealthCheckProtocol: elbv2types.ProtocolEnumHttp,
				HealthCheckPort:     aws.String("traffic-port"),
				TargetType:          elbv2types.TargetTypeEnumInstance,
				LoadBalancerArns:    []string{"arn:lb-1", "arn:lb-2"},
			}},
		}, nil)
	mockAPI.On("DescribeTargetHealth", ctx, mock.Anything, mock.Anything).Return(
		&elasticloadbalancingv2.DescribeTargetHealthOutput{
			TargetHealthDescriptions: []elbv2types.TargetHealthDescription{
				{
					Target:       &elbv2types.TargetDescription{Id: aws.String("i-0123"), Port: aws.Int32(80)},
					TargetHealth: &elbv2types.TargetHealth{State: elbv2types.TargetHealthStateEnumHealthy},
				},
				{
					Target:       &elbv2types.TargetDescription{Id: aws.String("i-0456"), Port: aws.Int32(80)},
					TargetHealth: &elbv2types.TargetHealth{State: elbv2types.TargetHealthStateEnumUnhealthy},
				},
			},
		}, nil)

	c := &TargetGroupCollector{client: mockAPI}
	records, err := c.Collect(ctx, "us-east-1", collector.Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	get := func(col string) string {
		v, _ := rec.Get(col)
		return v
	}
	assert.Equal(t, "arn:tg-1", get("Resource ID"))
	assert.Equal(t, "80", get("Port"))
	assert.Equal(t, "arn:lb-1; arn:lb-2", get("LoadBalancerArns"))
	assert.Equal(t, "i-0123 (healthy)\ni-0456 (unhealthy)", get("Targets"))
	assert.Equal(t, "80; 80", get("Target Ports"))

	mockAPI.AssertExpectations(t)
}
