package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"

	"archatlas/internal/domain"
	"archatlas/internal/logging"
)

// CollectRESTAPIs lists API Gateway REST APIs as exposed web components.
func CollectRESTAPIs(ctx context.Context) ([]domain.Component, error) {
	client, err := GetAWSClient(ctx, "apigateway")
	if err != nil {
		return nil, fmt.Errorf("failed to get API Gateway client: %w", err)
	}
	apiSvc := client.(*apigateway.Client)

	var components []domain.Component
	var position *string
	for {
		output, err := apiSvc.GetRestApis(ctx, &apigateway.GetRestApisInput{Position: position})
		if err != nil {
			return nil, fmt.Errorf("failed to list REST APIs: %w", err)
		}
		for _, api := range output.Items {
			components = append(components, domain.Component{
				ID:       "apigw-" + aws.ToString(api.Id),
				Type:     domain.ComponentTypeWeb,
				Name:     aws.ToString(api.Name) + " API Gateway",
				Category: "Networking",
				Zone:     "DMZ",
				Metadata: domain.Metadata{
					Vendor:   "AWS API Gateway",
					Exposed:  true,
					Features: []string{"iam auth", "rate limiting"},
				},
			})
		}
		if output.Position == nil {
			break
		}
		position = output.Position
	}

	logging.LogInfo("collected REST APIs", map[string]any{"count": len(components)})
	return components, nil
}

// CollectHTTPAPIs lists API Gateway v2 HTTP and WebSocket APIs.
func CollectHTTPAPIs(ctx context.Context) ([]domain.Component, error) {
	client, err := GetAWSClient(ctx, "apigatewayv2")
	if err != nil {
		return nil, fmt.Errorf("failed to get API Gateway v2 client: %w", err)
	}
	apiSvc := client.(*apigatewayv2.Client)

	var components []domain.Component
	var token *string
	for {
		output, err := apiSvc.GetApis(ctx, &apigatewayv2.GetApisInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("failed to list HTTP APIs: %w", err)
		}
		for _, api := range output.Items {
			components = append(components, domain.Component{
				ID:       "apigwv2-" + aws.ToString(api.ApiId),
				Type:     domain.ComponentTypeWeb,
				Name:     aws.ToString(api.Name) + " API Gateway",
				Category: "Networking",
				Zone:     "DMZ",
				Metadata: domain.Metadata{
					Vendor:   "AWS API Gateway v2 (" + string(api.ProtocolType) + ")",
					Exposed:  true,
					Features: []string{"iam auth"},
				},
			})
		}
		if output.NextToken == nil {
			break
		}
		token = output.NextToken
	}

	logging.LogInfo("collected HTTP APIs", map[string]any{"count": len(components)})
	return components, nil
}
