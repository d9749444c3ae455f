// Package elbv2 collects load balancer and target group inventory
// through the Elastic Load Balancing v2 API.
package elbv2

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/cloudinv/aws-dep-mapper/collector"
	"github.com/cloudinv/aws-dep-mapper/inventory"
)

// API is the subset of the Elastic Load Balancing v2 API the collectors
// use. Declared locally so tests can inject a mock.
type API interface {
	DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancingv2.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeLoadBalancersOutput, error)
	DescribeTargetGroups(ctx context.Context, params *elasticloadbalancingv2.DescribeTargetGroupsInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeTargetGroupsOutput, error)
	DescribeListeners(ctx context.Context, params *elasticloadbalancingv2.DescribeListenersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeListenersOutput, error)
	DescribeTargetHealth(ctx context.Context, params *elasticloadbalancingv2.DescribeTargetHealthInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeTargetHealthOutput, error)
}

func newAPI(ctx context.Context, region string) (API, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return elasticloadbalancingv2.NewFromConfig(cfg), nil
}

// LoadBalancerCollector collects all load balancers of a region.
type LoadBalancerCollector struct {
	client API // injected in tests; nil creates a region-scoped client per call
}

// NewLoadBalancerCollector creates a new load balancer collector.
func NewLoadBalancerCollector() *LoadBalancerCollector {
	return &LoadBalancerCollector{}
}

// Service returns the service name handled by this collector.
func (c *LoadBalancerCollector) Service() string {
	return "ELB"
}

// Collect retrieves the load balancers of the region together with
// their listener and target group summaries.
func (c *LoadBalancerCollector) Collect(ctx context.Context, region string, _ collector.Options) ([]inventory.Record, error) {
	client := c.client
	if client == nil {
		var err error
		if client, err = newAPI(ctx, region); err != nil {
			return nil, err
		}
	}

	var records []inventory.Record
	paginator := elasticloadbalancingv2.NewDescribeLoadBalancersPaginator(client, &elasticloadbalancingv2.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe load balancers: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			arn := aws.ToString(lb.LoadBalancerArn)

			targetGroups, err := c.targetGroups(ctx, client, arn)
			if err != nil {
				slog.Warn("failed to list target groups", "load_balancer", arn, "error", err)
			}
			listeners, certs := c.listeners(ctx, client, arn)

			tgNames := make([]string, 0, len(targetGroups))
			tgARNs := make([]string, 0, len(targetGroups))
			for _, tg := range targetGroups {
				tgNames = append(tgNames, aws.ToString(tg.TargetGroupName))
				tgARNs = append(tgARNs, aws.ToString(tg.TargetGroupArn))
			}

			rec := inventory.NewRecord()
			rec.Set("Region", region)
			rec.Set("Service", "ELB")
			rec.Set("Resource Name", aws.ToString(lb.LoadBalancerName))
			rec.Set("Resource ID", arn)
			rec.Set("Type", string(lb.Type))
			rec.Set("DNS Name", aws.ToString(lb.DNSName))
			rec.Set("Scheme", string(lb.Scheme))
			rec.Set("VPC ID", aws.ToString(lb.VpcId))
			rec.Set("Listeners", listeners)
			rec.Set("SSL Certificates", certs)
			rec.Set("Target Group Names", orNA(strings.Join(tgNames, "; ")))
			rec.Set("Target Group IDs", orNA(strings.Join(tgARNs, "; ")))
			records = append(records, rec)
		}
	}
	return records, nil
}

func (c *LoadBalancerCollector) targetGroups(ctx context.Context, client API, lbARN string) ([]elbv2types.TargetGroup, error) {
	var groups []elbv2types.TargetGroup
	paginator := elasticloadbalancingv2.NewDescribeTargetGroupsPaginator(client, &elasticloadbalancingv2.DescribeTargetGroupsInput{
		LoadBalancerArn: aws.String(lbARN),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return groups, err
		}
		groups = append(groups, page.TargetGroups...)
	}
	return groups, nil
}

// listeners returns the "protocols; ports" summary and the certificate
// summary of a load balancer's listeners.
func (c *LoadBalancerCollector) listeners(ctx context.Context, client API, lbARN string) (string, string) {
	var protocols, ports, certs []string
	paginator := elasticloadbalancingv2.NewDescribeListenersPaginator(client, &elasticloadbalancingv2.DescribeListenersInput{
		LoadBalancerArn: aws.String(lbARN),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			slog.Warn("failed to list listeners", "load_balancer", lbARN, "error", err)
			break
		}
		for _, l := range page.Listeners {
			protocols = append(protocols, string(l.Protocol))
			ports = append(ports, formatInt32(l.Port))

			ids := make([]string, 0, len(l.Certificates))
			for _, cert := range l.Certificates {
				certARN := aws.ToString(cert.CertificateArn)
				parts := strings.Split(certARN, "/")
				ids = append(ids, parts[len(parts)-1])
			}
			certs = append(certs, orNA(strings.Join(ids, ",")))
		}
	}
	return strings.Join(protocols, "; ") + "; " + strings.Join(ports, "; "), strings.Join(certs, "; ")
}

// TargetGroupCollector collects all target groups of a region with the
// health of their registered targets.
type TargetGroupCollector struct {
	client API
}

// NewTargetGroupCollector creates a new target group collector.
func NewTargetGroupCollector() *TargetGroupCollector {
	return &TargetGroupCollector{}
}

// Service returns the service name handled by this collector.
func (c *TargetGroupCollector) Service() string {
	return "TargetGroup"
}

// Collect retrieves the target groups of the region. The Targets cell
// is written as one "<identifier> (<health>)" entry per line, the form
// the topology builder parses.
func (c *TargetGroupCollector) Collect(ctx context.Context, region string, _ collector.Options) ([]inventory.Record, error) {
	client := c.client
	if client == nil {
		var err error
		if client, err = newAPI(ctx, region); err != nil {
			return nil, err
		}
	}

	var records []inventory.Record
	paginator := elasticloadbalancingv2.NewDescribeTargetGroupsPaginator(client, &elasticloadbalancingv2.DescribeTargetGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe target groups: %w", err)
		}
		for _, tg := range page.TargetGroups {
			arn := aws.ToString(tg.TargetGroupArn)
			targets, targetPorts := c.targetHealth(ctx, client, arn)

			rec := inventory.NewRecord()
			rec.Set("Region", region)
			rec.Set("Service", "TargetGroup")
			rec.Set("Resource Name", aws.ToString(tg.TargetGroupName))
			rec.Set("Resource ID", arn)
			rec.Set("Protocol", string(tg.Protocol))
			rec.Set("Port", formatInt32(tg.Port))
			rec.Set("VpcId", aws.ToString(tg.VpcId))
			rec.Set("HealthCheckProtocol", string(tg.HealthCheckProtocol))
			rec.Set("HealthCheckPort", aws.ToString(tg.HealthCheckPort))
			rec.Set("TargetType", string(tg.TargetType))
			rec.Set("LoadBalancerArns", strings.Join(tg.LoadBalancerArns, "; "))
			rec.Set("Targets", targets)
			rec.Set("Target Ports", strings.Join(targetPorts, "; "))
			records = append(records, rec)
		}
	}
	return records, nil
}

func (c *TargetGroupCollector) targetHealth(ctx context.Context, client API, tgARN string) (string, []string) {
	resp, err := client.DescribeTargetHealth(ctx, &elasticloadbalancingv2.DescribeTargetHealthInput{
		TargetGroupArn: aws.String(tgARN),
	})
	if err != nil {
		slog.Warn("failed to describe target health", "target_group", tgARN, "error", err)
		return "", nil
	}

	var lines, ports []string
	for _, th := range resp.TargetHealthDescriptions {
		if th.Target == nil {
			continue
		}
		id := aws.ToString(th.Target.Id)
		if th.Target.Port != nil {
			ports = append(ports, formatInt32(th.Target.Port))
		}
		state := ""
		if th.TargetHealth != nil {
			state = string(th.TargetHealth.State)
		}
		if state == "" {
			lines = append(lines, id)
		} else {
			lines = append(lines, fmt.Sprintf("%s (%s)", id, state))
		}
	}
	return strings.Join(lines, "\n"), ports
}

func formatInt32(v *int32) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(int(*v))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
