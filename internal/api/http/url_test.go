package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/Callmeg0d/ShortURL/internal/entity"
	"github.com/Callmeg0d/ShortURL/internal/service"
)

var errUnknown = errors.New("unknown error")

type MockURLService struct {
	mock.Mock
}

func (s *MockURLService) ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	args := s.Called(ctx, originalURL)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (s *MockURLService) GetURL(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := s.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (s *MockURLService) ListURLs(ctx context.Context, page, size int, isActive *bool) ([]entity.URL, error) {
	args := s.Called(ctx, page, size, isActive)
	urls, _ := args.Get(0).([]entity.URL)
	return urls, args.Error(1)
}

func (s *MockURLService) Redirect(ctx context.Context, shortCode string) (string, error) {
	args := s.Called(ctx, shortCode)
	return args.String(0), args.Error(1)
}

func (s *MockURLService) DeactivateURL(ctx context.Context, shortCode string) error {
	args := s.Called(ctx, shortCode)
	return args.Error(0)
}

func (s *MockURLService) GetURLStats(ctx context.Context, shortCode string) (*entity.URLStats, error) {
	args := s.Called(ctx, shortCode)
	stats, _ := args.Get(0).(*entity.URLStats)
	return stats, args.Error(1)
}

func (s *MockURLService) GetStatsForAllURLs(ctx context.Context) ([]entity.URLStats, error) {
	args := s.Called(ctx)
	stats, _ := args.Get(0).([]entity.URLStats)
	return stats, args.Error(1)
}

func (s *MockURLService) GetStatsSortedByClicks(ctx context.Context, period string) ([]entity.URLStats, error) {
	args := s.Called(ctx, period)
	stats, _ := args.Get(0).([]entity.URLStats)
	return stats, args.Error(1)
}

type HandlersTestSuite struct {
	suite.Suite
	logger     *httplog.Logger
	urlSvcMock *MockURLService
	server     *httptest.Server
	e          *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.urlSvcMock = new(MockURLService)
	router := NewRouter(suite.logger, suite.urlSvcMock)
	suite.server = httptest.NewServer(router)
	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.urlSvcMock.AssertExpectations(suite.T())
	suite.server.Close()
}

func (suite *HandlersTestSuite) TestPing() {
	suite.Run("success", func() {
		suite.e.GET("/ping").
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("pong")
	})
}

func (suite *HandlersTestSuite) TestCreateURL() {
	const path = "/urls/create"

	suite.Run("empty request body", func() {
		suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", emptyRequestBodyResponse.Message)
	})

	suite.Run("invalid request body", func() {
		suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", invalidRequestBodyResponse.Message)
	})

	suite.Run("validation error", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{
				"original_url": "invalid url",
			}).
			Expect().
			Status(http.StatusUnprocessableEntity).
			HasContentType("application/json").
			JSON().Object()

		resp.HasValue("status", statusError).
			HasValue("message", "validation error")
		resp.Value("errors").Array().NotEmpty()
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return(nil, errUnknown)

		suite.e.POST(path).
			WithJSON(map[string]string{
				"original_url": "https://example.com",
			}).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", serverErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com").
			Once().
			Return(&entity.URL{
				ID:          1,
				ShortCode:   "abc123",
				OriginalURL: "https://example.com",
				IsActive:    true,
				CreatedAt:   time.Now().UTC(),
			}, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{
				"original_url": "https://example.com",
			}).
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object()

		resp.HasValue("id", 1).
			HasValue("short_url", "abc123").
			HasValue("original_url", "https://example.com").
			HasValue("clicks", 0).
			HasValue("is_active", true)
		resp.ContainsKey("created_at")
	})
}

func (suite *HandlersTestSuite) TestListURLs() {
	const path = "/urls/all"

	suite.Run("invalid page param", func() {
		suite.e.GET(path).
			WithQuery("page", "abc").
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", invalidQueryParamsResponse.Message)
	})

	suite.Run("non-positive size param", func() {
		suite.e.GET(path).
			WithQuery("size", "0").
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", invalidQueryParamsResponse.Message)
	})

	suite.Run("invalid is_active param", func() {
		suite.e.GET(path).
			WithQuery("is_active", "maybe").
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", invalidQueryParamsResponse.Message)
	})

	suite.Run("defaults applied", func() {
		suite.urlSvcMock.
			On("ListURLs", mock.Anything, defaultPage, defaultSize, (*bool)(nil)).
			Once().
			Return([]entity.URL{
				{ID: 1, ShortCode: "abc123", OriginalURL: "https://example.com", IsActive: true},
			}, nil)

		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Array()

		resp.Length().IsEqual(1)
		resp.Value(0).Object().
			HasValue("short_url", "abc123").
			HasValue("original_url", "https://example.com")
	})

	suite.Run("explicit paging and filter", func() {
		isActive := false
		suite.urlSvcMock.
			On("ListURLs", mock.Anything, 2, 5, &isActive).
			Once().
			Return([]entity.URL{}, nil)

		suite.e.GET(path).
			WithQuery("page", "2").
			WithQuery("size", "5").
			WithQuery("is_active", "false").
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Array().
			Length().IsEqual(0)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("ListURLs", mock.Anything, defaultPage, defaultSize, (*bool)(nil)).
			Once().
			Return(nil, errUnknown)

		suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", serverErrorResponse.Message)
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	const path = "/urls/r/abc123"

	suite.Run("url not found", func() {
		suite.urlSvcMock.
			On("Redirect", mock.Anything, "abc123").
			Once().
			Return("", entity.ErrURLNotFound)

		suite.e.GET(path).
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", urlNotFoundResponse.Message)
	})

	suite.Run("url inactive", func() {
		suite.urlSvcMock.
			On("Redirect", mock.Anything, "abc123").
			Once().
			Return("", entity.ErrURLInactive)

		suite.e.GET(path).
			Expect().
			Status(http.StatusConflict).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", urlInactiveResponse.Message)
	})

	suite.Run("url expired", func() {
		suite.urlSvcMock.
			On("Redirect", mock.Anything, "abc123").
			Once().
			Return("", entity.ErrURLExpired)

		suite.e.GET(path).
			Expect().
			Status(http.StatusGone).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", urlExpiredResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("Redirect", mock.Anything, "abc123").
			Once().
			Return("", errUnknown)

		suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", serverErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("Redirect", mock.Anything, "abc123").
			Once().
			Return("https://example.com", nil)

		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object().
			HasValue("original_url", "https://example.com")
	})
}

func (suite *HandlersTestSuite) TestDeactivateURL() {
	const path = "/urls/deactivate/abc123"

	suite.Run("url not found", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "abc123").
			Once().
			Return(entity.ErrURLNotFound)

		suite.e.PATCH(path).
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", urlNotFoundResponse.Message)
	})

	suite.Run("already inactive", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "abc123").
			Once().
			Return(entity.ErrURLInactive)

		suite.e.PATCH(path).
			Expect().
			Status(http.StatusConflict).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", urlInactiveResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "abc123").
			Once().
			Return(errUnknown)

		suite.e.PATCH(path).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", serverErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "abc123").
			Once().
			Return(nil)

		suite.e.PATCH(path).
			Expect().
			Status(http.StatusOK)
	})
}

func (suite *HandlersTestSuite) TestGetURL() {
	const path = "/urls/abc123"

	suite.Run("url not found", func() {
		suite.urlSvcMock.
			On("GetURL", mock.Anything, "abc123").
			Once().
			Return(nil, entity.ErrURLNotFound)

		suite.e.GET(path).
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", urlNotFoundResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("GetURL", mock.Anything, "abc123").
			Once().
			Return(nil, errUnknown)

		suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", serverErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("GetURL", mock.Anything, "abc123").
			Once().
			Return(&entity.URL{
				ID:          1,
				ShortCode:   "abc123",
				OriginalURL: "https://example.com",
				Clicks:      3,
				IsActive:    true,
			}, nil)

		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object().
			HasValue("short_url", "abc123").
			HasValue("original_url", "https://example.com").
			HasValue("clicks", 3)
	})
}

func (suite *HandlersTestSuite) TestGetAllStats() {
	const path = "/urls/stats"

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("GetStatsForAllURLs", mock.Anything).
			Once().
			Return(nil, errUnknown)

		suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", serverErrorResponse.Message)
	})

	suite.Run("success preserves order", func() {
		suite.urlSvcMock.
			On("GetStatsForAllURLs", mock.Anything).
			Once().
			Return([]entity.URLStats{
				{ShortCode: "abc123", OriginalURL: "https://example.com/a", LastHourClicks: 1, LastDayClicks: 5},
				{ShortCode: "def456", OriginalURL: "https://example.com/b"},
			}, nil)

		resp := suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Array()

		resp.Length().IsEqual(2)
		resp.Value(0).Object().
			HasValue("short_url", "abc123").
			HasValue("last_hour_clicks", 1).
			HasValue("last_day_clicks", 5)
		resp.Value(1).Object().
			HasValue("short_url", "def456").
			HasValue("last_hour_clicks", 0).
			HasValue("last_day_clicks", 0)
	})
}

func (suite *HandlersTestSuite) TestGetStatsSorted() {
	suite.Run("sorted by hour", func() {
		suite.urlSvcMock.
			On("GetStatsSortedByClicks", mock.Anything, entity.PeriodHour).
			Once().
			Return([]entity.URLStats{
				{ShortCode: "def456", LastHourClicks: 4, LastDayClicks: 4},
				{ShortCode: "abc123", LastHourClicks: 1, LastDayClicks: 9},
			}, nil)

		resp := suite.e.GET("/urls/stats/hour").
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Array()

		resp.Length().IsEqual(2)
		resp.Value(0).Object().HasValue("short_url", "def456")
	})

	suite.Run("sorted by day", func() {
		suite.urlSvcMock.
			On("GetStatsSortedByClicks", mock.Anything, entity.PeriodDay).
			Once().
			Return([]entity.URLStats{
				{ShortCode: "abc123", LastHourClicks: 1, LastDayClicks: 9},
				{ShortCode: "def456", LastHourClicks: 4, LastDayClicks: 4},
			}, nil)

		resp := suite.e.GET("/urls/stats/day").
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Array()

		resp.Length().IsEqual(2)
		resp.Value(0).Object().HasValue("short_url", "abc123")
	})

	suite.Run("invalid period", func() {
		suite.urlSvcMock.
			On("GetStatsSortedByClicks", mock.Anything, entity.PeriodHour).
			Once().
			Return(nil, entity.ErrInvalidPeriod)

		suite.e.GET("/urls/stats/hour").
			Expect().
			Status(http.StatusUnprocessableEntity).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", entity.ErrInvalidPeriod.Error())
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("GetStatsSortedByClicks", mock.Anything, entity.PeriodDay).
			Once().
			Return(nil, errUnknown)

		suite.e.GET("/urls/stats/day").
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", serverErrorResponse.Message)
	})
}

func (suite *HandlersTestSuite) TestGetURLStats() {
	const path = "/urls/stats/abc123"

	suite.Run("url not found", func() {
		suite.urlSvcMock.
			On("GetURLStats", mock.Anything, "abc123").
			Once().
			Return(nil, entity.ErrURLNotFound)

		suite.e.GET(path).
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", urlNotFoundResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("GetURLStats", mock.Anything, "abc123").
			Once().
			Return(nil, errUnknown)

		suite.e.GET(path).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", statusError).
			HasValue("message", serverErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("GetURLStats", mock.Anything, "abc123").
			Once().
			Return(&entity.URLStats{
				ShortCode:      "abc123",
				OriginalURL:    "https://example.com",
				LastHourClicks: 2,
				LastDayClicks:  7,
			}, nil)

		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object().
			HasValue("short_url", "abc123").
			HasValue("original_url", "https://example.com").
			HasValue("last_hour_clicks", 2).
			HasValue("last_day_clicks", 7)
	})
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

var _ urlService = (*service.URLService)(nil)
