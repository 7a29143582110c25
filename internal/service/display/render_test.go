package display

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/darkkaiser/omnibus-server/internal/catalog"
	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/history"
	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	"github.com/darkkaiser/omnibus-server/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuoter struct {
	mock.Mock
}

func (m *mockQuoter) PriceFor(ctx context.Context, productID, variantID uint, withTax bool, pctx pricing.Context) (decimal.Decimal, error) {
	args := m.Called(ctx, productID, variantID, withTax, pctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockHistoryReader struct {
	mock.Mock
}

func (m *mockHistoryReader) LowestDistinct(ctx context.Context, key history.ObservationKey, since time.Time, taxIncl bool) ([]decimal.Decimal, error) {
	args := m.Called(ctx, key, since, taxIncl)
	if prices := args.Get(0); prices != nil {
		return prices.([]decimal.Decimal), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCurrencyReader struct {
	mock.Mock
}

func (m *mockCurrencyReader) CurrencyByID(ctx context.Context, id uint) (*catalog.Currency, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*catalog.Currency), args.Error(1)
	}
	return nil, args.Error(1)
}

func testOmnibusConfig() config.OmnibusConfig {
	return config.OmnibusConfig{
		WindowDays:    30,
		DisplayMode:   config.DisplayModeOnlyDiscount,
		PriceKind:     config.PriceKindGross,
		ShowPercent:   true,
		Precision:     2,
		RetentionDays: 365,
		ProductLabel:  map[string]string{"en": "Lowest price in 30 days before discount:", "pl": "Najniższa cena z 30 dni przed obniżką:"},
		ListingLabel:  map[string]string{"en": "Lowest price in 30 days:"},
	}
}

func defaultPricingContext() pricing.Context {
	return pricing.Context{ShopID: 1, CurrencyID: 1, CountryID: 1, GroupID: 1}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("성공: 할인 중인 상품은 라벨, 기준 가격, 할인율 배지를 표시한다", func(t *testing.T) {
		t.Parallel()

		quoter := &mockQuoter{}
		quoter.On("PriceFor", mock.Anything, uint(3), uint(0), true, mock.Anything).Return(dec("7.50"), nil)

		reader := &mockHistoryReader{}
		reader.On("LowestDistinct", mock.Anything, mock.Anything, mock.Anything, true).Return(decs("8.00", "9.00"), nil)

		currencies := &mockCurrencyReader{}
		currencies.On("CurrencyByID", mock.Anything, uint(1)).Return(&catalog.Currency{ID: 1, ISOCode: "EUR"}, nil)

		renderer := NewRenderer(quoter, reader, currencies, testOmnibusConfig())

		result := renderer.Render(context.Background(), ProductRef{ProductID: 3}, ViewProduct, defaultPricingContext(), "en", nil)
		require.True(t, result.ShouldDisplay)
		assert.Equal(t, 6, result.Percent)
		assert.NotEmpty(t, result.Price)

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
		require.NoError(t, err)
		assert.Equal(t, "Lowest price in 30 days before discount:", doc.Find(".omnibus__text").Text())
		assert.Equal(t, "-6%", doc.Find(".omnibus__percent").Text())
		assert.NotEmpty(t, doc.Find(".omnibus__price").Text())
		assert.Equal(t, 1, doc.Find(".omnibus--product").Length())
	})

	t.Run("성공: 목록 페이지는 목록용 라벨과 클래스를 사용한다", func(t *testing.T) {
		t.Parallel()

		quoter := &mockQuoter{}
		quoter.On("PriceFor", mock.Anything, uint(3), uint(0), true, mock.Anything).Return(dec("7.50"), nil)

		reader := &mockHistoryReader{}
		reader.On("LowestDistinct", mock.Anything, mock.Anything, mock.Anything, true).Return(decs("8.00", "9.00"), nil)

		currencies := &mockCurrencyReader{}
		currencies.On("CurrencyByID", mock.Anything, uint(1)).Return(&catalog.Currency{ID: 1, ISOCode: "EUR"}, nil)

		renderer := NewRenderer(quoter, reader, currencies, testOmnibusConfig())

		result := renderer.Render(context.Background(), ProductRef{ProductID: 3}, ViewListing, defaultPricingContext(), "en", nil)
		require.True(t, result.ShouldDisplay)

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
		require.NoError(t, err)
		assert.Equal(t, "Lowest price in 30 days:", doc.Find(".omnibus__text").Text())
		assert.Equal(t, 1, doc.Find(".omnibus--listing").Length())
	})

	t.Run("성공: 로케일에 맞는 라벨이 선택된다", func(t *testing.T) {
		t.Parallel()

		quoter := &mockQuoter{}
		quoter.On("PriceFor", mock.Anything, uint(3), uint(0), true, mock.Anything).Return(dec("7.50"), nil)

		reader := &mockHistoryReader{}
		reader.On("LowestDistinct", mock.Anything, mock.Anything, mock.Anything, true).Return(decs("8.00", "9.00"), nil)

		currencies := &mockCurrencyReader{}
		currencies.On("CurrencyByID", mock.Anything, uint(1)).Return(&catalog.Currency{ID: 1, ISOCode: "PLN"}, nil)

		renderer := NewRenderer(quoter, reader, currencies, testOmnibusConfig())

		result := renderer.Render(context.Background(), ProductRef{ProductID: 3}, ViewProduct, defaultPricingContext(), "pl", nil)
		require.True(t, result.ShouldDisplay)
		assert.Contains(t, result.HTML, "Najniższa cena z 30 dni przed obniżką:")
	})

	t.Run("성공: 할인이 아니면 only_discount 모드에서 빈 결과를 반환한다", func(t *testing.T) {
		t.Parallel()

		quoter := &mockQuoter{}
		quoter.On("PriceFor", mock.Anything, uint(3), uint(0), true, mock.Anything).Return(dec("8.50"), nil)

		reader := &mockHistoryReader{}
		reader.On("LowestDistinct", mock.Anything, mock.Anything, mock.Anything, true).Return(decs("8.00", "9.00"), nil)

		renderer := NewRenderer(quoter, reader, &mockCurrencyReader{}, testOmnibusConfig())

		result := renderer.Render(context.Background(), ProductRef{ProductID: 3}, ViewProduct, defaultPricingContext(), "en", nil)
		assert.False(t, result.ShouldDisplay)
		assert.Empty(t, result.HTML)
	})

	t.Run("성공: 상품 ID가 없으면 빈 결과를 반환한다", func(t *testing.T) {
		t.Parallel()

		renderer := NewRenderer(&mockQuoter{}, &mockHistoryReader{}, &mockCurrencyReader{}, testOmnibusConfig())

		result := renderer.Render(context.Background(), ProductRef{}, ViewProduct, defaultPricingContext(), "en", nil)
		assert.False(t, result.ShouldDisplay)
		assert.Empty(t, result.HTML)
	})

	t.Run("성공: 가격 계산 실패는 에러 없이 빈 결과로 처리된다", func(t *testing.T) {
		t.Parallel()

		quoter := &mockQuoter{}
		quoter.On("PriceFor", mock.Anything, uint(3), uint(0), true, mock.Anything).
			Return(decimal.Zero, apperrors.New(apperrors.System, "데이터베이스 연결이 끊어졌습니다"))

		renderer := NewRenderer(quoter, &mockHistoryReader{}, &mockCurrencyReader{}, testOmnibusConfig())

		result := renderer.Render(context.Background(), ProductRef{ProductID: 3}, ViewProduct, defaultPricingContext(), "en", nil)
		assert.False(t, result.ShouldDisplay)
		assert.Empty(t, result.HTML)
	})

	t.Run("성공: 이력 조회 실패는 에러 없이 빈 결과로 처리된다", func(t *testing.T) {
		t.Parallel()

		quoter := &mockQuoter{}
		quoter.On("PriceFor", mock.Anything, uint(3), uint(0), true, mock.Anything).Return(dec("7.50"), nil)

		reader := &mockHistoryReader{}
		reader.On("LowestDistinct", mock.Anything, mock.Anything, mock.Anything, true).
			Return(nil, apperrors.New(apperrors.System, "데이터베이스 연결이 끊어졌습니다"))

		renderer := NewRenderer(quoter, reader, &mockCurrencyReader{}, testOmnibusConfig())

		result := renderer.Render(context.Background(), ProductRef{ProductID: 3}, ViewProduct, defaultPricingContext(), "en", nil)
		assert.False(t, result.ShouldDisplay)
		assert.Empty(t, result.HTML)
	})

	t.Run("성공: 요청 범위 캐시는 동일 문맥의 이력 조회를 한 번만 수행한다", func(t *testing.T) {
		t.Parallel()

		quoter := &mockQuoter{}
		quoter.On("PriceFor", mock.Anything, uint(3), uint(0), true, mock.Anything).Return(dec("7.50"), nil)

		reader := &mockHistoryReader{}
		reader.On("LowestDistinct", mock.Anything, mock.Anything, mock.Anything, true).Return(decs("8.00", "9.00"), nil).Once()

		currencies := &mockCurrencyReader{}
		currencies.On("CurrencyByID", mock.Anything, uint(1)).Return(&catalog.Currency{ID: 1, ISOCode: "EUR"}, nil)

		renderer := NewRenderer(quoter, reader, currencies, testOmnibusConfig())
		cache := NewRequestCache()

		first := renderer.Render(context.Background(), ProductRef{ProductID: 3}, ViewListing, defaultPricingContext(), "en", cache)
		second := renderer.Render(context.Background(), ProductRef{ProductID: 3}, ViewListing, defaultPricingContext(), "en", cache)

		assert.True(t, first.ShouldDisplay)
		assert.Equal(t, first.HTML, second.HTML)
		reader.AssertNumberOfCalls(t, "LowestDistinct", 1)
	})
}

func TestRenderer_Header(t *testing.T) {
	t.Parallel()

	t.Run("성공: 설정된 CSS를 style 블록으로 감싼다", func(t *testing.T) {
		t.Parallel()

		cfg := testOmnibusConfig()
		cfg.CustomCSS = ".omnibus { color: #7a7a7a; }"

		renderer := NewRenderer(&mockQuoter{}, &mockHistoryReader{}, &mockCurrencyReader{}, cfg)

		header := renderer.Header()
		assert.True(t, strings.HasPrefix(header, "<style>"))
		assert.True(t, strings.HasSuffix(header, "</style>"))
		assert.Contains(t, header, ".omnibus { color: #7a7a7a; }")
	})

	t.Run("성공: CSS가 설정되지 않았으면 빈 문자열을 반환한다", func(t *testing.T) {
		t.Parallel()

		renderer := NewRenderer(&mockQuoter{}, &mockHistoryReader{}, &mockCurrencyReader{}, testOmnibusConfig())
		assert.Empty(t, renderer.Header())
	})

	t.Run("성공: CSS에 섞인 태그는 제거된다", func(t *testing.T) {
		t.Parallel()

		cfg := testOmnibusConfig()
		cfg.CustomCSS = ".omnibus { color: red; }</style><script>alert(1)</script>"

		renderer := NewRenderer(&mockQuoter{}, &mockHistoryReader{}, &mockCurrencyReader{}, cfg)

		header := renderer.Header()
		assert.NotContains(t, header, "<script>")
		assert.Contains(t, header, ".omnibus { color: red; }")
	})

	t.Run("성공: 엔티티로 인코딩된 태그도 style 블록을 벗어나지 못한다", func(t *testing.T) {
		t.Parallel()

		cfg := testOmnibusConfig()
		cfg.CustomCSS = ".omnibus { color: red; }&lt;/style&gt;&lt;script&gt;alert(1)&lt;/script&gt;"

		renderer := NewRenderer(&mockQuoter{}, &mockHistoryReader{}, &mockCurrencyReader{}, cfg)

		header := renderer.Header()
		assert.NotContains(t, header, "<script>")
		assert.NotContains(t, header, "</style><script>")
		assert.Contains(t, header, ".omnibus { color: red; }")
		assert.True(t, strings.HasSuffix(header, "</style>"))
	})
}
