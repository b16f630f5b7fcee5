package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"archatlas/internal/domain"
	"archatlas/internal/logging"
)

// CollectIdentity models the account's IAM as a single identity provider
// component. MFA on the account root shows up as a feature tag.
func CollectIdentity(ctx context.Context, accountID string) (*domain.Component, error) {
	client, err := GetAWSClient(ctx, "iam")
	if err != nil {
		return nil, fmt.Errorf("failed to get IAM client: %w", err)
	}
	iamSvc := client.(*iam.Client)

	features := []string{"iam auth", "audit logging"}
	summary, err := iamSvc.GetAccountSummary(ctx, &iam.GetAccountSummaryInput{})
	if err != nil {
		logging.LogWarn("failed to get account summary", map[string]any{"error": err.Error()})
	} else if summary.SummaryMap["AccountMFAEnabled"] == 1 {
		features = append(features, "mfa")
	}

	return &domain.Component{
		ID:       "iam-" + accountID,
		Type:     domain.ComponentTypeSecurity,
		Name:     "Identity Provider (IAM)",
		Category: "Security",
		Zone:     "Management",
		Metadata: domain.Metadata{
			Vendor:     "AWS IAM",
			Features:   features,
			Secured:    true,
			Privileged: true,
		},
	}, nil
}

// CollectKeyManagement models customer-managed KMS keys as one key
// management component. Returns nil when the account has no keys.
func CollectKeyManagement(ctx context.Context, accountID string) (*domain.Component, error) {
	client, err := GetAWSClient(ctx, "kms")
	if err != nil {
		return nil, fmt.Errorf("failed to get KMS client: %w", err)
	}
	kmsSvc := client.(*kms.Client)

	output, err := kmsSvc.ListKeys(ctx, &kms.ListKeysInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list KMS keys: %w", err)
	}
	if output == nil || len(output.Keys) == 0 {
		return nil, nil
	}

	logging.LogInfo("collected KMS keys", map[string]any{"count": len(output.Keys)})
	return &domain.Component{
		ID:       "kms-" + accountID,
		Type:     domain.ComponentTypeSecurity,
		Name:     "KMS Key Management",
		Category: "Security",
		Zone:     "Management",
		Metadata: domain.Metadata{
			Vendor:   "AWS KMS",
			Features: []string{"encryption", "audit logging"},
			Secured:  true,
		},
	}, nil
}
