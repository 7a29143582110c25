package display

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/catalog"
	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/history"
	"github.com/darkkaiser/omnibus-server/internal/pricing"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/darkkaiser/omnibus-server/pkg/strutil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const component = "display.renderer"

// View 최저가 정보가 삽입되는 페이지 종류
type View string

const (
	// ViewProduct 상품 상세 페이지
	ViewProduct View = "product"

	// ViewListing 상품 목록 페이지
	ViewListing View = "listing"
)

// 라벨이 설정되지 않은 로케일에 사용하는 기본 문구
const (
	defaultProductLabel = "Lowest price in 30 days before discount:"
	defaultListingLabel = "Lowest price in 30 days:"
)

const productTemplate = `<div class="omnibus omnibus--product"><span class="omnibus__text">{{.Text}}</span> <span class="omnibus__price">{{.Price}}</span>{{if .HasPercent}}<span class="omnibus__percent">{{.PercentText}}</span>{{end}}</div>`

const listingTemplate = `<div class="omnibus omnibus--listing"><span class="omnibus__text">{{.Text}}</span> <span class="omnibus__price">{{.Price}}</span>{{if .HasPercent}}<span class="omnibus__percent">{{.PercentText}}</span>{{end}}</div>`

// PriceQuoter 판매 문맥에서의 현재 판매가를 계산하는 인터페이스
type PriceQuoter interface {
	PriceFor(ctx context.Context, productID, variantID uint, withTax bool, pctx pricing.Context) (decimal.Decimal, error)
}

// HistoryReader 기간 내 서로 다른 이력 가격을 조회하는 인터페이스
type HistoryReader interface {
	LowestDistinct(ctx context.Context, key history.ObservationKey, since time.Time, taxIncl bool) ([]decimal.Decimal, error)
}

// CurrencyReader 가격 표시에 사용할 통화 정보를 조회하는 인터페이스
type CurrencyReader interface {
	CurrencyByID(ctx context.Context, id uint) (*catalog.Currency, error)
}

// RenderResult 렌더링 결과. ShouldDisplay가 false이면 HTML은 빈 문자열입니다.
type RenderResult struct {
	ShouldDisplay bool   `json:"should_display"`
	HTML          string `json:"html"`
	Price         string `json:"price"`
	Percent       int    `json:"percent"`
}

// Renderer 최저가 정보 HTML 조각을 생성하는 렌더러
type Renderer struct {
	engine     PriceQuoter
	store      HistoryReader
	currencies CurrencyReader
	cfg        config.OmnibusConfig

	productTmpl *template.Template
	listingTmpl *template.Template

	// now 테스트에서 기준 시각을 고정하기 위해 주입 가능하다.
	now func() time.Time
}

// NewRenderer 새로운 렌더러를 생성합니다.
func NewRenderer(engine PriceQuoter, store HistoryReader, currencies CurrencyReader, cfg config.OmnibusConfig) *Renderer {
	return &Renderer{
		engine:      engine,
		store:       store,
		currencies:  currencies,
		cfg:         cfg,
		productTmpl: template.Must(template.New("product").Parse(productTemplate)),
		listingTmpl: template.Must(template.New("listing").Parse(listingTemplate)),
		now:         time.Now,
	}
}

// Render 지정된 상품과 판매 문맥의 최저가 정보를 계산하고 HTML 조각을 생성합니다.
//
// 표시할 정보가 없거나 내부 오류가 발생한 경우에는 빈 결과를 반환하며,
// 오류는 로그로만 남기고 호출자에게 전파하지 않습니다. 페이지 렌더링이
// 최저가 정보 때문에 실패해서는 안 되기 때문입니다.
//
// cache가 nil이 아니면 동일 문맥의 이력 조회 결과를 요청 범위에서 재사용합니다.
func (r *Renderer) Render(ctx context.Context, ref ProductRef, view View, pctx pricing.Context, locale string, cache *RequestCache) RenderResult {
	if !ref.Valid() {
		return RenderResult{}
	}

	logger := applog.WithComponentAndFields(component, map[string]interface{}{
		"product_id": ref.ProductID,
		"variant_id": ref.VariantID,
	})

	withTax := r.cfg.PriceKind == config.PriceKindGross

	current, err := r.engine.PriceFor(ctx, ref.ProductID, ref.VariantID, withTax, pctx)
	if err != nil {
		logger.WithError(err).Warn("현재 판매가 계산에 실패하여 최저가 정보를 표시하지 않습니다")
		return RenderResult{}
	}

	key := history.ObservationKey{
		ShopID:     pctx.ShopID,
		ProductID:  ref.ProductID,
		VariantID:  ref.VariantID,
		CurrencyID: pctx.CurrencyID,
		CountryID:  pctx.CountryID,
		GroupID:    pctx.GroupID,
	}

	prices, ok := cachedPrices(cache, key)
	if !ok {
		since := r.now().AddDate(0, 0, -r.cfg.WindowDays)
		prices, err = r.store.LowestDistinct(ctx, key, since, withTax)
		if err != nil {
			logger.WithError(err).Warn("가격 이력 조회에 실패하여 최저가 정보를 표시하지 않습니다")
			return RenderResult{}
		}
		if cache != nil {
			cache.put(key, prices)
		}
	}

	resolution := Resolve(current, prices, r.cfg.DisplayMode, r.cfg.ShowPercent, int32(r.cfg.Precision))
	if !resolution.ShouldDisplay {
		return RenderResult{Percent: resolution.PercentChange}
	}

	formatted := r.formatPrice(ctx, resolution.PriceToDisplay, pctx.CurrencyID, locale)

	html, err := r.renderFragment(view, fragmentData{
		Text:        r.labelFor(view, locale),
		Price:       formatted,
		HasPercent:  resolution.ShowBadge,
		PercentText: fmt.Sprintf("-%d%%", resolution.PercentChange),
	})
	if err != nil {
		logger.WithError(err).Error("최저가 정보 템플릿 렌더링에 실패했습니다")
		return RenderResult{}
	}

	return RenderResult{
		ShouldDisplay: true,
		HTML:          html,
		Price:         formatted,
		Percent:       resolution.PercentChange,
	}
}

// Header 설정된 사용자 정의 CSS를 담은 <style> 조각을 반환합니다.
// CSS가 설정되지 않았으면 빈 문자열을 반환합니다.
func (r *Renderer) Header() string {
	css := strings.TrimSpace(r.cfg.CustomCSS)
	if css == "" {
		return ""
	}

	// 설정값에 태그가 섞여 들어와도 <style> 블록을 벗어나지 못하도록 제거한다.
	return "<style>" + strutil.StripHTMLTags(css) + "</style>"
}

type fragmentData struct {
	Text        string
	Price       string
	HasPercent  bool
	PercentText string
}

func (r *Renderer) renderFragment(view View, data fragmentData) (string, error) {
	tmpl := r.productTmpl
	if view == ViewListing {
		tmpl = r.listingTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// labelFor 페이지 종류와 로케일에 맞는 라벨 문구를 반환합니다.
// 해당 로케일의 라벨이 설정되지 않았으면 영문 라벨, 그것도 없으면 기본 문구를 사용합니다.
func (r *Renderer) labelFor(view View, locale string) string {
	labels := r.cfg.ProductLabel
	fallback := defaultProductLabel
	if view == ViewListing {
		labels = r.cfg.ListingLabel
		fallback = defaultListingLabel
	}

	if label, ok := labels[locale]; ok && strings.TrimSpace(label) != "" {
		return label
	}
	if label, ok := labels["en"]; ok && strings.TrimSpace(label) != "" {
		return label
	}
	return fallback
}

// formatPrice 가격을 통화 기호와 함께 로케일에 맞게 형식화합니다.
// 통화 정보를 조회할 수 없으면 숫자만 반환합니다.
func (r *Renderer) formatPrice(ctx context.Context, value decimal.Decimal, currencyID uint, locale string) string {
	rounded := value.Round(int32(r.cfg.Precision))

	cur, err := r.currencies.CurrencyByID(ctx, currencyID)
	if err != nil {
		return rounded.StringFixed(int32(r.cfg.Precision))
	}

	unit, err := currency.ParseISO(cur.ISOCode)
	if err != nil {
		return rounded.StringFixed(int32(r.cfg.Precision)) + " " + cur.ISOCode
	}

	amount, _ := rounded.Float64()
	printer := message.NewPrinter(localeTag(locale))
	return printer.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}

func localeTag(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
