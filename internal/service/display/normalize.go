package display

import (
	"github.com/tidwall/gjson"
)

// ProductRef 렌더링 대상 상품을 가리키는 정규화된 참조
type ProductRef struct {
	ProductID uint `json:"product_id"`
	VariantID uint `json:"variant_id"`
}

// Valid 상품 ID가 지정되어 있는지 여부를 반환합니다.
func (r ProductRef) Valid() bool {
	return r.ProductID > 0
}

// NormalizeProductRef 렌더링 요청에 담겨 오는 다양한 형태의 상품 데이터를
// 하나의 ProductRef로 정규화합니다.
//
// 허용되는 형태:
//   - 객체: {"id_product": 3, "id_product_attribute": 7}
//   - 객체: {"id": 3} (옵션 ID 생략 가능)
//   - 배열: 위 객체들의 배열 (첫 번째 요소만 사용)
//   - 숫자: 상품 ID 하나
//
// 해석할 수 없는 형태이면 빈 참조를 반환합니다. 에러는 발생하지 않습니다.
func NormalizeProductRef(payload []byte) ProductRef {
	value := gjson.ParseBytes(payload)
	return normalizeValue(value)
}

func normalizeValue(value gjson.Result) ProductRef {
	switch value.Type {
	case gjson.Number:
		return ProductRef{ProductID: uint(value.Uint())}

	case gjson.JSON:
		if value.IsArray() {
			arr := value.Array()
			if len(arr) == 0 {
				return ProductRef{}
			}
			return normalizeValue(arr[0])
		}
		return normalizeObject(value)

	default:
		return ProductRef{}
	}
}

func normalizeObject(value gjson.Result) ProductRef {
	var ref ProductRef

	if id := value.Get("id_product"); id.Exists() {
		ref.ProductID = uint(id.Uint())
	} else if id := value.Get("id"); id.Exists() {
		ref.ProductID = uint(id.Uint())
	}

	if variant := value.Get("id_product_attribute"); variant.Exists() {
		ref.VariantID = uint(variant.Uint())
	} else if variant := value.Get("default_id_product_attribute"); variant.Exists() {
		ref.VariantID = uint(variant.Uint())
	}

	return ref
}
