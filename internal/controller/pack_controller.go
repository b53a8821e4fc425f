package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"plew-backend/internal/model"
	"plew-backend/internal/service"
)

type PackController struct {
	packService       service.PackService
	completionService service.CompletionService
	packRepo          packReader
	reportService     service.ReportService
}

// packReader is the slice of the completed-pack repository the controller
// needs for history endpoints.
type packReader interface {
	GetByUser(email string) ([]model.CompletedPack, error)
	GetByID(id uint) (*model.CompletedPack, error)
}

func NewPackController(packService service.PackService, completionService service.CompletionService, packRepo packReader, reportService service.ReportService) *PackController {
	return &PackController{
		packService:       packService,
		completionService: completionService,
		packRepo:          packRepo,
		reportService:     reportService,
	}
}

type createPackRequest struct {
	Size       int              `json:"size"`
	UserEmail  string           `json:"userEmail"`
	Level      int              `json:"level"`
	IsDemo     bool             `json:"isDemo"`
	PackID     string           `json:"packId"`
	QuestionID string           `json:"questionId"`
	Questions  []model.Question `json:"questions"`
}

// CreatePack handles POST /packs
func (pc *PackController) CreatePack(c *gin.Context) {
	identity := c.GetString("email")

	var req createPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// The server-side identity wins over whatever the client put in the
	// payload; a mismatch is an ownership violation.
	if req.UserEmail != "" && req.UserEmail != identity {
		c.JSON(http.StatusForbidden, gin.H{"error": "userEmail does not match authenticated user"})
		return
	}
	if req.Size < 1 || req.Size > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 1 and 100"})
		return
	}
	if req.Level == 0 {
		req.Level = 1
	}
	if req.Level < 1 || req.Level > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level must be between 1 and 5"})
		return
	}

	pack, err := pc.packService.CreatePack(service.CreatePackInput{
		UserEmail:  identity,
		Level:      req.Level,
		Size:       req.Size,
		PackID:     req.PackID,
		QuestionID: req.QuestionID,
		Questions:  req.Questions,
		IsDemo:     req.IsDemo,
	})
	if err != nil {
		var denied *service.AccessDeniedError
		switch {
		case errors.As(err, &denied):
			c.JSON(http.StatusForbidden, gin.H{
				"error":              denied.Error(),
				"tier":               denied.Tier,
				"questionsCompleted": denied.QuestionsCompleted,
				"requiresUpgrade":    true,
			})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no questions available"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create pack"})
		}
		return
	}

	c.JSON(http.StatusOK, pack)
}

// RecordCompletion handles POST /packs/complete
func (pc *PackController) RecordCompletion(c *gin.Context) {
	identity := c.GetString("email")

	var input service.CompletionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	completedPackID, err := pc.completionService.RecordCompletion(identity, input)
	if err != nil {
		var validation *service.ValidationError
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "userEmail does not match authenticated user"})
		case errors.As(err, &validation):
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record completion"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"completedPackId": completedPackID,
	})
}

// GetCompletedPacks handles GET /packs/completed
func (pc *PackController) GetCompletedPacks(c *gin.Context) {
	email := c.GetString("email")

	packs, err := pc.packRepo.GetByUser(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch completed packs"})
		return
	}

	results := make([]gin.H, 0, len(packs))
	for i := range packs {
		results = append(results, gin.H{
			"pack":            packs[i],
			"scorePercentage": packs[i].ScorePercentage(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"completedPacks": results})
}

// GetCompletedPack handles GET /packs/completed/:id
func (pc *PackController) GetCompletedPack(c *gin.Context) {
	email := c.GetString("email")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pack id"})
		return
	}

	pack, err := pc.packRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "completed pack not found"})
		return
	}
	if pack.UserEmail != email {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your pack"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pack":            pack,
		"scorePercentage": pack.ScorePercentage(),
	})
}

// DownloadReport handles GET /packs/report
func (pc *PackController) DownloadReport(c *gin.Context) {
	email := c.GetString("email")

	pdfContent, err := pc.reportService.GenerateStudyReport(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=plew_study_report.pdf")
	c.Data(http.StatusOK, "application/pdf", pdfContent)
}
