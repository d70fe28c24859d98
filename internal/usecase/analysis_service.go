package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

const (
	// maxImageDim bounds uploaded images before they are sent to a model
	maxImageDim = 1024

	// maxItems caps how many identified items fan out into searches
	maxItems = 12
)

// AnalysisService runs the identify -> search -> synthesize pipeline.
// Identification and synthesis each go through a model fallback chain; the
// search step degrades per item and never fails the request.
type AnalysisService struct {
	identify   *FallbackChain
	synthesize *FallbackChain
	search     *SearchOrchestrator
	logger     *zap.Logger
}

// NewAnalysisService wires the pipeline. The two chains usually share the
// same backends; they are separate parameters because the candidate lists may
// diverge (e.g. a cheaper model for identification).
func NewAnalysisService(identify, synthesize *FallbackChain, search *SearchOrchestrator, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		identify:   identify,
		synthesize: synthesize,
		search:     search,
		logger:     logger,
	}
}

// Analyze produces a structured nutrition report for a food image
func (s *AnalysisService) Analyze(ctx context.Context, imageBytes []byte, deepSearch bool) (*domain.FoodAnalysis, error) {
	if len(imageBytes) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	jpeg := normalizeImage(imageBytes, s.logger)

	s.logger.Info("identifying food items", zap.Int("image_bytes", len(jpeg)))
	identified, err := s.identify.Generate(ctx, &domain.GenerationRequest{
		Prompt:     identifyPrompt,
		ImageJPEG:  jpeg,
		DeepSearch: deepSearch,
	})
	if err != nil {
		return nil, err
	}

	items := parseItemList(identified)
	s.logger.Info("identified items", zap.Strings("items", items))

	results, err := s.search.SearchAll(ctx, items)
	if err != nil {
		return nil, err
	}

	searchContext := buildSearchContext(items, results)

	s.logger.Info("synthesizing final report", zap.Int("items", len(items)))
	raw, err := s.synthesize.Generate(ctx, &domain.GenerationRequest{
		Prompt:     synthesisPrompt(searchContext),
		ImageJPEG:  jpeg,
		DeepSearch: deepSearch,
	})
	if err != nil {
		return nil, err
	}

	analysis, err := parseReport(raw)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// parseItemList splits the identification output into item names. The model
// is asked for a comma-separated list but smaller models often answer one
// item per line, so newlines count as separators too.
func parseItemList(raw string) []string {
	flattened := strings.ReplaceAll(raw, "\n", ",")

	var items []string
	for _, part := range strings.Split(flattened, ",") {
		item := strings.Trim(strings.TrimSpace(part), "-*• ")
		if item == "" {
			continue
		}
		items = append(items, item)
		if len(items) == maxItems {
			break
		}
	}
	return items
}

// buildSearchContext renders one context block per item for the synthesis
// prompt. Degraded items still get a block so the model knows to fall back to
// visual estimation for them.
func buildSearchContext(items []string, results []domain.SearchResult) string {
	var b strings.Builder

	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Item Search: ")
		b.WriteString(item)
		b.WriteString("\nData: ")

		result := results[i]
		if !result.IsSuccess() {
			b.WriteString(degradedNote(result.Reason))
			continue
		}

		data, err := json.Marshal(result.Payload)
		if err != nil {
			b.WriteString(degradedNote(""))
			continue
		}
		b.Write(data)
	}

	return b.String()
}

func degradedNote(reason string) string {
	if reason == "" {
		return "Web search unavailable. Proceed with visual estimation only."
	}
	return fmt.Sprintf("Web search unavailable (%s). Proceed with visual estimation only.", reason)
}

// parseReport unmarshals the synthesis output, tolerating markdown fences and
// chatter around the JSON object
func parseReport(raw string) (*domain.FoodAnalysis, error) {
	cleaned := stripMarkdownFences(raw)

	var analysis domain.FoodAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err == nil {
		return &analysis, nil
	}

	// Smaller models wrap the JSON in prose; salvage the outermost object
	if salvaged, ok := extractJSONObject(cleaned); ok {
		if err := json.Unmarshal([]byte(salvaged), &analysis); err == nil {
			return &analysis, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", domain.ErrMalformedReport, truncate(raw, 200))
}

// stripMarkdownFences removes a surrounding ```json ... ``` block
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSONObject returns the substring between the first '{' and the last
// '}', if both exist
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// normalizeImage shrinks oversized uploads and re-encodes them as JPEG.
// Undecodable bytes pass through untouched; the model call will surface the
// real problem.
func normalizeImage(imageBytes []byte, logger *zap.Logger) []byte {
	if logger == nil {
		logger = zap.NewNop()
	}
	img, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		logger.Warn("image decode failed, using original bytes", zap.Error(err))
		return imageBytes
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageDim || bounds.Dy() > maxImageDim {
		img = imaging.Fit(img, maxImageDim, maxImageDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		logger.Warn("image re-encode failed, using original bytes", zap.Error(err))
		return imageBytes
	}
	return buf.Bytes()
}
