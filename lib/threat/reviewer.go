package threat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// AzureReviewer asks an Azure OpenAI deployment for a second opinion.
type AzureReviewer struct {
	client       *azopenai.Client
	deploymentID string
}

func NewAzureReviewer(endpoint, apiKey, deploymentID string) (*AzureReviewer, error) {
	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("create azure openai client: %w", err)
	}
	return &AzureReviewer{
		client:       client,
		deploymentID: deploymentID,
	}, nil
}

const reviewPrompt = `You review online marketplace listings for illegal wildlife trade.
Rate how likely the listing below sells a product from a protected species
on a scale of 0 to 100. Replicas, toys and artwork depicting animals score low.

Platform: %s
Title: %s
Description: %s
Price: %s
Keyword rule score: %d (%s)
Rule indicators: %s

Answer with exactly two lines:
SCORE: <0-100>
REASON: <one sentence>`

func reviewPromptFor(listing Listing, rule Assessment) string {
	terms := make([]string, len(rule.Indicators))
	for i, ind := range rule.Indicators {
		terms[i] = fmt.Sprintf("%s:%s(%+d)", ind.Kind, ind.Term, ind.Weight)
	}
	price := listing.PriceText
	if price == "" && listing.Price > 0 {
		price = fmt.Sprintf("%.2f %s", listing.Price, listing.Currency)
	}
	return fmt.Sprintf(
		reviewPrompt,
		listing.Platform,
		listing.Title,
		listing.Description,
		price,
		rule.RuleScore,
		rule.Level,
		strings.Join(terms, ", "),
	)
}

func (r *AzureReviewer) Review(ctx context.Context, listing Listing, rule Assessment) (Review, error) {
	resp, err := r.client.GetChatCompletions(
		ctx,
		azopenai.ChatCompletionsOptions{
			DeploymentName: to.Ptr(r.deploymentID),
			Messages: []azopenai.ChatRequestMessageClassification{
				&azopenai.ChatRequestUserMessage{
					Content: azopenai.NewChatRequestUserMessageContent(reviewPromptFor(listing, rule)),
				},
			},
			Temperature: to.Ptr[float32](0),
		},
		nil,
	)
	if err != nil {
		return Review{}, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return Review{}, errors.New("no completion received from reviewer")
	}
	return ParseReview(*resp.Choices[0].Message.Content)
}

var (
	scoreRegex  = regexp.MustCompile(`(?im)^\s*\**score\**\s*:\s*\**\s*(\d{1,3})`)
	reasonRegex = regexp.MustCompile(`(?im)^\s*\**reason\**\s*:\s*\**\s*(.+)$`)
)

// ParseReview reads the SCORE and REASON lines of a reviewer reply.
func ParseReview(text string) (Review, error) {
	match := scoreRegex.FindStringSubmatch(text)
	if match == nil {
		return Review{}, fmt.Errorf("no SCORE line in reviewer reply %q", text)
	}
	score, err := strconv.Atoi(match[1])
	if err != nil {
		return Review{}, err
	}
	review := Review{Score: clamp(score)}
	if reason := reasonRegex.FindStringSubmatch(text); reason != nil {
		review.Rationale = strings.TrimSpace(reason[1])
	}
	return review, nil
}
