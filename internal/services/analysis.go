package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/formai-backend/internal/apperr"
	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/repos"
	"github.com/yungbote/formai-backend/internal/types"
	"github.com/yungbote/formai-backend/internal/utils"
)

// UploadFailedURL is the sentinel blob reference stored when archival to the
// bucket fails. Analysis proceeds regardless.
const UploadFailedURL = "upload_failed"

// Notice records a non-fatal degradation that happened while producing an
// otherwise successful analysis.
type Notice struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type AnalysisService interface {
	AnalyzeDeep(ctx context.Context, userID uuid.UUID, sportID string, video []byte, filename, contentType string) (types.AnalysisResult, []Notice, error)
}

type analysisService struct {
	db          *gorm.DB
	log         *logger.Logger
	gemini      GeminiClient
	bucket      BucketService
	sessionRepo repos.SessionRepo

	scratchDir      string
	pollInterval    time.Duration
	maxPollAttempts int
}

func NewAnalysisService(
	db *gorm.DB,
	log *logger.Logger,
	gemini GeminiClient,
	bucket BucketService,
	sessionRepo repos.SessionRepo,
) AnalysisService {
	serviceLog := log.With("service", "AnalysisService")
	scratchDir := utils.GetEnv("SCRATCH_DIR", "temp_videos", log)
	pollIntervalMS := utils.GetEnvAsInt("GEMINI_POLL_INTERVAL_MS", 2000, log)
	maxPollAttempts := utils.GetEnvAsInt("GEMINI_POLL_MAX_ATTEMPTS", 150, log)
	return &analysisService{
		db:              db,
		log:             serviceLog,
		gemini:          gemini,
		bucket:          bucket,
		sessionRepo:     sessionRepo,
		scratchDir:      scratchDir,
		pollInterval:    time.Duration(pollIntervalMS) * time.Millisecond,
		maxPollAttempts: maxPollAttempts,
	}
}

const analysisPromptTemplate = `You are a world-class %s biomechanics analyst.
Analyze this video of a player's training session.

Your goal is to provide deep technical reasoning:
1. Rate their technical form (1-10).
2. Identify 3 specific flaws (with timestamps if possible).
3. Suggest a professional equipment upgrade (Bat/Racket/Shoes) to fix their current biomechanical disadvantage.

Return ONLY a JSON object:
{
    "technical_score": number,
    "summary": "snappy expert summary",
    "detailed_flaws": ["flaw 1", "flaw 2", "flaw 3"],
    "equipment_advice": "specific product name and reason"
}`

// AnalyzeDeep runs the full deep-analysis workflow. Only a missing provider
// client, provider-reported processing failure, or a processing timeout fail
// the call; blob upload and session persistence degrade into notices so the
// caller always gets coaching feedback.
func (as *analysisService) AnalyzeDeep(ctx context.Context, userID uuid.UUID, sportID string, video []byte, filename, contentType string) (types.AnalysisResult, []Notice, error) {
	var notices []Notice

	if as.gemini == nil {
		return types.AnalysisResult{}, nil, apperr.Config("gemini_not_configured", fmt.Errorf("gemini api key not configured"))
	}

	// 1. Stage to scratch under a generated name; the client filename only
	// contributes its extension.
	if err := os.MkdirAll(as.scratchDir, 0o755); err != nil {
		return types.AnalysisResult{}, nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	stagingPath := filepath.Join(as.scratchDir, uuid.New().String()+filepath.Ext(filename))
	if err := os.WriteFile(stagingPath, video, 0o644); err != nil {
		return types.AnalysisResult{}, nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(stagingPath); rmErr != nil && !os.IsNotExist(rmErr) {
			as.log.Warn("Failed to remove scratch file", "path", stagingPath, "error", rmErr)
		}
	}()

	// 2. Best-effort archival to the bucket.
	videoURL := as.archiveVideo(ctx, userID, filename, contentType, video, &notices)

	// 3. Submit the staged clip to the provider.
	staged, err := os.Open(stagingPath)
	if err != nil {
		return types.AnalysisResult{}, nil, fmt.Errorf("failed to open staged clip: %w", err)
	}
	remote, err := as.gemini.UploadFile(ctx, staged, filepath.Base(filename), contentType)
	_ = staged.Close()
	if err != nil {
		return types.AnalysisResult{}, nil, apperr.Provider("provider_upload_failed", err)
	}

	// 4. Poll until the clip leaves PROCESSING.
	remote, err = as.waitForProcessing(ctx, remote)
	if err != nil {
		return types.AnalysisResult{}, nil, err
	}

	// 5. One multimodal reasoning call.
	prompt := fmt.Sprintf(analysisPromptTemplate, sportID)
	raw, err := as.gemini.GenerateContent(ctx, remote, prompt)
	if err != nil {
		return types.AnalysisResult{}, nil, apperr.Provider("provider_reasoning_failed", err)
	}

	// 6. Parse, falling back to the deterministic payload on any failure.
	result, ok := parseAnalysisResponse(raw)
	if !ok {
		as.log.Warn("Model output was not parseable, using fallback", "user_id", userID, "sport_id", sportID)
		notices = append(notices, Notice{Code: "parse_fallback", Detail: "model output was not valid JSON"})
	}

	// 7. Persist the session; failure is logged and swallowed.
	as.persistSession(ctx, userID, sportID, videoURL, result, &notices)

	return result, notices, nil
}

func (as *analysisService) archiveVideo(ctx context.Context, userID uuid.UUID, filename, contentType string, video []byte, notices *[]Notice) string {
	if as.bucket == nil {
		*notices = append(*notices, Notice{Code: "blob_upload_skipped", Detail: "blob storage not configured"})
		return UploadFailedURL
	}
	key := fmt.Sprintf("videos/%s/%d_%s", userID, time.Now().Unix(), filepath.Base(filename))
	if err := as.bucket.UploadFile(ctx, key, bytes.NewReader(video), contentType); err != nil {
		as.log.Warn("Blob upload failed, continuing with placeholder", "key", key, "error", err)
		*notices = append(*notices, Notice{Code: "blob_upload_failed", Detail: err.Error()})
		return UploadFailedURL
	}
	return as.bucket.GetPublicURL(key)
}

// waitForProcessing is the Submitted -> Processing -> {Ready, Failed,
// TimedOut} state machine around the provider's file lifecycle.
func (as *analysisService) waitForProcessing(ctx context.Context, file *GeminiFile) (*GeminiFile, error) {
	attempts := 0
	for file.State == GeminiFileProcessing {
		if attempts >= as.maxPollAttempts {
			return nil, apperr.Timeout("provider_processing_timeout", fmt.Errorf("clip still processing after %d polls", attempts))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(as.pollInterval):
		}
		next, err := as.gemini.GetFile(ctx, file.Name)
		if err != nil {
			return nil, apperr.Provider("provider_poll_failed", err)
		}
		file = next
		attempts++
	}
	if file.State != GeminiFileActive {
		return nil, apperr.Provider("provider_processing_failed", fmt.Errorf("provider reported state %s", file.State))
	}
	return file, nil
}

func (as *analysisService) persistSession(ctx context.Context, userID uuid.UUID, sportID, videoURL string, result types.AnalysisResult, notices *[]Notice) {
	flaws, err := json.Marshal(result.DetailedFlaws)
	if err != nil {
		flaws = []byte("[]")
	}
	session := &types.Session{
		ID:              uuid.New(),
		UserID:          userID,
		SportID:         sportID,
		VideoURL:        videoURL,
		DurationSeconds: 0,
		TechnicalScore:  result.TechnicalScore,
		Summary:         result.Summary,
		DetailedFlaws:   datatypes.JSON(flaws),
		EquipmentAdvice: result.EquipmentAdvice,
	}
	if _, err := as.sessionRepo.Create(ctx, nil, []*types.Session{session}); err != nil {
		as.log.Warn("Failed to persist session (ignored)", "user_id", userID, "sport_id", sportID, "error", err)
		*notices = append(*notices, Notice{Code: "session_persist_failed", Detail: err.Error()})
	}
}

// parseAnalysisResponse strips markdown code fences and parses the model's
// reply. Returns the fallback payload and false when anything about the text
// is unusable.
func parseAnalysisResponse(raw string) (types.AnalysisResult, bool) {
	text := stripCodeFences(raw)

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return types.FallbackAnalysisResult(), false
	}
	if result.Summary == "" && len(result.DetailedFlaws) == 0 && result.EquipmentAdvice == "" {
		return types.FallbackAnalysisResult(), false
	}
	return result, true
}

func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
