package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	batchdomain "github.com/condovialabs/condovia/internal/batch/domain"
	batchservice "github.com/condovialabs/condovia/internal/batch/service"
	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	chargerepo "github.com/condovialabs/condovia/internal/charge/repository"
	chargeservice "github.com/condovialabs/condovia/internal/charge/service"
	"github.com/condovialabs/condovia/internal/clock"
	"github.com/condovialabs/condovia/internal/config"
	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
	feetemplaterepo "github.com/condovialabs/condovia/internal/feetemplate/repository"
	feetemplateservice "github.com/condovialabs/condovia/internal/feetemplate/service"
	"github.com/condovialabs/condovia/internal/observability"
	reportingservice "github.com/condovialabs/condovia/internal/reporting/service"
	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
	residentrepo "github.com/condovialabs/condovia/internal/resident/repository"
	residentservice "github.com/condovialabs/condovia/internal/resident/service"
	"github.com/condovialabs/condovia/internal/server"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&residentdomain.Resident{},
		&feetemplatedomain.FeeTemplate{},
		&chargedomain.Charge{},
	))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_charges_template_resident_period
		 ON charges (source_template_id, resident_id, competency_period)
		 WHERE status <> 'cancelled'
		   AND source_template_id IS NOT NULL
		   AND competency_period IS NOT NULL`,
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	clk := clock.New()
	metrics := observability.NewMetrics()

	residentSvc := residentservice.New(residentservice.Params{
		DB: db, Log: logger, GenID: node, Clock: clk, Repo: residentrepo.Provide(),
	})
	templateSvc := feetemplateservice.New(feetemplateservice.Params{
		DB: db, Log: logger, GenID: node, Clock: clk, Repo: feetemplaterepo.Provide(),
	})
	chargeSvc := chargeservice.New(chargeservice.Params{
		DB: db, Log: logger, GenID: node, Clock: clk, Metrics: metrics,
		Repo: chargerepo.Provide(), Directory: residentSvc,
	})
	batchSvc := batchservice.New(batchservice.Params{
		DB: db, Log: logger, GenID: node, Clock: clk, Metrics: metrics,
		ChargeRepo: chargerepo.Provide(), TemplateRepo: feetemplaterepo.Provide(),
		Directory: residentSvc,
	})
	reportingSvc := reportingservice.New(reportingservice.Params{DB: db, Log: logger})

	srv := server.NewServer(server.Params{
		Log:          logger,
		Config:       config.Config{Server: config.ServerConfig{Addr: ":0"}},
		Metrics:      metrics,
		TemplateSvc:  templateSvc,
		ChargeSvc:    chargeSvc,
		BatchSvc:     batchSvc,
		ReportingSvc: reportingSvc,
		ResidentSvc:  residentSvc,
	})
	return srv.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func createResident(t *testing.T, router *gin.Engine, name, unit string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/v1/residents", gin.H{
		"name": name, "unit": unit, "block": "A",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return dataField(t, rec)["id"].(string)
}

func createTemplate(t *testing.T, router *gin.Engine) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/v1/fee-templates", gin.H{
		"name":           "Taxa Ordinária",
		"category":       "ordinary",
		"default_amount": "350.00",
		"due_day":        10,
		"recurring":      true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return dataField(t, rec)["id"].(string)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBatchGenerationEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	createResident(t, router, "Ana Souza", "101")
	createResident(t, router, "Bruno Lima", "102")
	templateID := createTemplate(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/batches", gin.H{
		"template_id":       templateID,
		"competency_period": "2026-02",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Data batchdomain.GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Data.Created, 2)
	require.Empty(t, result.Data.Skipped)

	// Re-running the same batch reports everyone as skipped.
	rec = doJSON(t, router, http.MethodPost, "/v1/batches", gin.H{
		"template_id":       templateID,
		"competency_period": "2026-02",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Empty(t, result.Data.Created)
	require.Len(t, result.Data.Skipped, 2)
}

func TestPaymentLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	residentID := createResident(t, router, "Ana Souza", "101")

	rec := doJSON(t, router, http.MethodPost, "/v1/charges", gin.H{
		"resident_id": residentID,
		"description": "Reparo portão",
		"amount":      "200.00",
		"due_date":    "2026-03-15T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	chargeID := dataField(t, rec)["id"].(string)

	// Partial payment keeps the charge pending.
	rec = doJSON(t, router, http.MethodPost, "/v1/charges/"+chargeID+"/payments", gin.H{
		"amount":  "80.00",
		"paid_at": "2026-03-10T12:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "pending", dataField(t, rec)["status"])

	// Overpayment is rejected outright.
	rec = doJSON(t, router, http.MethodPost, "/v1/charges/"+chargeID+"/payments", gin.H{
		"amount":  "500.00",
		"paid_at": "2026-03-10T12:00:00Z",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "overpayment_rejected", errorCode(t, rec))

	// Settling the remainder flips the charge to paid.
	rec = doJSON(t, router, http.MethodPost, "/v1/charges/"+chargeID+"/payments", gin.H{
		"amount":  "120.00",
		"paid_at": "2026-03-11T12:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "paid", dataField(t, rec)["status"])

	// A paid charge cannot be cancelled.
	rec = doJSON(t, router, http.MethodPost, "/v1/charges/"+chargeID+"/cancel", gin.H{
		"reason": "typo",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "charge_terminal_state", errorCode(t, rec))
}

func TestGetUnknownChargeReturns404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/charges/123456789", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "charge_not_found", errorCode(t, rec))
}

func TestCreateChargeInvalidResidentID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/charges", gin.H{
		"resident_id": "not-a-number",
		"description": "x",
		"amount":      "10.00",
		"due_date":    "2026-03-15T00:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchInactiveTemplateReturns422(t *testing.T) {
	router := newTestRouter(t)

	createResident(t, router, "Ana Souza", "101")
	templateID := createTemplate(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/fee-templates/"+templateID+"/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/batches", gin.H{
		"template_id":       templateID,
		"competency_period": "2026-02",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "template_inactive", errorCode(t, rec))
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	createResident(t, router, "Ana Souza", "101")
	templateID := createTemplate(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/batches", gin.H{
		"template_id":       templateID,
		"competency_period": "2026-02",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/stats?competency_period=2026-02", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats struct {
		Data struct {
			CountByStatus    map[string]int64 `json:"count_by_status"`
			OutstandingTotal string           `json:"outstanding_total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.Data.CountByStatus["pending"])
	require.Equal(t, "350", stats.Data.OutstandingTotal)
}

func TestDeleteTemplateInUseReturns409(t *testing.T) {
	router := newTestRouter(t)

	createResident(t, router, "Ana Souza", "101")
	templateID := createTemplate(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/batches", gin.H{
		"template_id":       templateID,
		"competency_period": "2026-02",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/v1/fee-templates/"+templateID, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "template_conflict", errorCode(t, rec))
}
