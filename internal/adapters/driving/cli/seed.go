package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nuclom/search/internal/adapters/driven/embedding/texthash"
	"github.com/nuclom/search/internal/core/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a small demo corpus into the local store",
	Long: `Populates the organization with example videos, transcript chunks,
and imported content items. Embeddings come from a deterministic local
hasher so semantic search works without any external provider.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedVideo struct {
	title       string
	description string
	transcript  string
	author      string
	ageDays     int
}

type seedItem struct {
	source      string
	title       string
	body        string
	contentType domain.ContentItemType
	author      string
	topic       string
	ageDays     int
}

var seedVideos = []seedVideo{
	{
		title:       "Q3 launch planning",
		description: "Scoping the launch milestones for the third quarter",
		transcript:  "We walk through the launch checklist, the rollout schedule, and who owns each milestone.",
		author:      "Ana Ruiz",
		ageDays:     4,
	},
	{
		title:       "Search relevance deep dive",
		description: "How keyword and embedding retrieval fuse into one ranking",
		transcript:  "Keyword matches and cosine similarity both contribute to the score, with a small boost for recent items.",
		author:      "Bo Lindqvist",
		ageDays:     20,
	},
	{
		title:       "Onboarding walkthrough",
		description: "A tour of the workspace for new teammates",
		transcript:  "This covers creating a workspace, inviting teammates, and recording your first video.",
		author:      "Cy Tanaka",
		ageDays:     90,
	},
}

var seedSources = []domain.Source{
	{ID: "slack:demo-eng", Type: domain.SourceTypeSlack, Name: "#eng"},
	{ID: "notion:demo-wiki", Type: domain.SourceTypeNotion, Name: "Team wiki"},
	{ID: "github:nuclom/demo", Type: domain.SourceTypeGitHub, Name: "nuclom/demo"},
}

var seedItems = []seedItem{
	{
		source:      "github:nuclom/demo",
		title:       "Search results drop recent items",
		body:        "Pagination past the first page loses recently created documents. Suspect the recency boost interacts badly with the offset.",
		contentType: domain.ContentTypeIssue,
		author:      "ana",
		topic:       "Search quality",
		ageDays:     2,
	},
	{
		source:      "github:nuclom/demo",
		title:       "Add facet counts to the filter sidebar",
		body:        "The sidebar should show how many items each source and content type would match before the filter is applied.",
		contentType: domain.ContentTypePullRequest,
		author:      "bo",
		topic:       "Search quality",
		ageDays:     12,
	},
	{
		source:      "notion:demo-wiki",
		title:       "Weekly sync notes",
		body:        "Decisions: ship the launch checklist by Friday, revisit the embedding model choice next quarter.",
		contentType: domain.ContentTypeDocument,
		author:      "cy",
		topic:       "Planning",
		ageDays:     6,
	},
	{
		source:      "slack:demo-eng",
		title:       "",
		body:        "Heads up: the rollout schedule moved a week, launch checklist owners please re-confirm your items.",
		contentType: domain.ContentTypeMessage,
		author:      "ana",
		topic:       "Planning",
		ageDays:     1,
	},
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if contentStore == nil {
		return errNotConfigured
	}

	ctx := cmd.Context()
	hasher := texthash.NewEmbeddingService(texthash.DefaultDimensions)
	now := time.Now().UTC()

	for _, sv := range seedVideos {
		if err := seedOneVideo(ctx, hasher, sv, now); err != nil {
			return err
		}
	}

	sources := map[string]domain.Source{}
	for _, src := range seedSources {
		src.OrganizationID = flagOrg
		if err := contentStore.SaveSource(ctx, src); err != nil {
			return fmt.Errorf("save source %q: %w", src.Name, err)
		}
		sources[src.ID] = src
	}

	topics := map[string]string{}
	for _, si := range seedItems {
		if err := seedOneItem(ctx, hasher, sources[si.source], si, topics, now); err != nil {
			return err
		}
	}

	cmd.Printf("Seeded %d videos and %d content items into organization %q\n",
		len(seedVideos), len(seedItems), flagOrg)
	return nil
}

func seedOneVideo(ctx context.Context, hasher *texthash.EmbeddingService, sv seedVideo, now time.Time) error {
	video := domain.Video{
		ID:             uuid.New().String(),
		OrganizationID: flagOrg,
		Title:          sv.title,
		Description:    sv.description,
		Transcript:     sv.transcript,
		AuthorID:       uuid.New().String(),
		AuthorName:     sv.author,
		CreatedAt:      now.AddDate(0, 0, -sv.ageDays),
	}
	if err := contentStore.SaveVideo(ctx, &video); err != nil {
		return fmt.Errorf("save video %q: %w", sv.title, err)
	}

	embedding, err := hasher.Embed(ctx, sv.title+" "+sv.transcript)
	if err != nil {
		return fmt.Errorf("embed video %q: %w", sv.title, err)
	}
	chunk := domain.TranscriptChunk{
		ID:        uuid.New().String(),
		VideoID:   video.ID,
		Position:  0,
		Content:   sv.transcript,
		Embedding: embedding,
	}
	if err := contentStore.SaveTranscriptChunks(ctx, []domain.TranscriptChunk{chunk}); err != nil {
		return fmt.Errorf("save chunks for %q: %w", sv.title, err)
	}
	return nil
}

func seedOneItem(ctx context.Context, hasher *texthash.EmbeddingService, source domain.Source, si seedItem, topics map[string]string, now time.Time) error {
	embedding, err := hasher.Embed(ctx, si.title+"\n"+si.body)
	if err != nil {
		return fmt.Errorf("embed item %q: %w", si.title, err)
	}
	item := domain.ContentItem{
		ID:             uuid.New().String(),
		OrganizationID: flagOrg,
		SourceID:       source.ID,
		SourceType:     source.Type,
		ContentType:    si.contentType,
		Title:          si.title,
		Body:           si.body,
		AuthorID:       si.author,
		AuthorName:     si.author,
		Embedding:      embedding,
		CreatedAt:      now.AddDate(0, 0, -si.ageDays),
	}
	if err := contentStore.SaveContentItem(ctx, &item); err != nil {
		return fmt.Errorf("save item %q: %w", si.title, err)
	}

	clusterID, ok := topics[si.topic]
	if !ok {
		clusterID = uuid.New().String()
		cluster := domain.TopicCluster{
			ID:             clusterID,
			OrganizationID: flagOrg,
			Name:           si.topic,
		}
		if err := contentStore.SaveTopicCluster(ctx, cluster); err != nil {
			return fmt.Errorf("save topic %q: %w", si.topic, err)
		}
		topics[si.topic] = clusterID
	}
	if err := contentStore.AssignTopic(ctx, item.ID, clusterID); err != nil {
		return fmt.Errorf("assign topic %q: %w", si.topic, err)
	}
	return nil
}
