package marketplace

import (
	"encoding/json"
	"fmt"
)

// rawEnvelope is the outer response object. Some endpoints wrap the payload
// in "data", others return it at the top level.
type rawEnvelope map[string]json.RawMessage

type rawPagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       *int `json:"total"`
	Pages       int  `json:"pages"`
	TotalPages  int  `json:"totalPages"`
	SellerCount int  `json:"sellerCount"`
	BuyerCount  int  `json:"buyerCount"`
}

// listEnvelope is the normalised form of any list response.
type listEnvelope struct {
	Items       json.RawMessage
	Pagination  Pagination
	SellerCount int
	BuyerCount  int
}

// decodeList normalises the list envelope drift observed across endpoints:
// optional "data" wrapper, items under "items" or under the resource name,
// "pages" vs "totalPages", and "pagination.total" vs a top-level "total".
// A missing or zero page count falls back to 1.
func decodeList(body []byte, resourceKey string, page, limit int) (listEnvelope, error) {
	var outer rawEnvelope
	if err := json.Unmarshal(body, &outer); err != nil {
		return listEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}

	payload := outer
	if data, ok := outer["data"]; ok && isObject(data) {
		var inner rawEnvelope
		if err := json.Unmarshal(data, &inner); err != nil {
			return listEnvelope{}, fmt.Errorf("decode data: %w", err)
		}
		payload = inner
	}

	out := listEnvelope{Items: json.RawMessage("[]")}
	for _, key := range []string{"items", resourceKey} {
		if key == "" {
			continue
		}
		if raw, ok := payload[key]; ok && isArray(raw) {
			out.Items = raw
			break
		}
	}

	var pg rawPagination
	if raw, ok := payload["pagination"]; ok && isObject(raw) {
		if err := json.Unmarshal(raw, &pg); err != nil {
			return listEnvelope{}, fmt.Errorf("decode pagination: %w", err)
		}
	}

	total := -1
	if pg.Total != nil {
		total = *pg.Total
	} else {
		for _, src := range []rawEnvelope{payload, outer} {
			if raw, ok := src["total"]; ok {
				var t int
				if err := json.Unmarshal(raw, &t); err == nil {
					total = t
					break
				}
			}
		}
	}

	pages := pg.Pages
	if pages <= 0 {
		pages = pg.TotalPages
	}
	if pages <= 0 {
		pages = 1
	}

	out.Pagination = Pagination{
		Page:  firstPositive(pg.Page, page, 1),
		Limit: firstPositive(pg.Limit, limit),
		Total: total,
		Pages: pages,
	}
	if out.Pagination.Total < 0 {
		var items []json.RawMessage
		_ = json.Unmarshal(out.Items, &items)
		out.Pagination.Total = len(items)
	}

	out.SellerCount = pg.SellerCount
	out.BuyerCount = pg.BuyerCount
	if out.SellerCount == 0 && out.BuyerCount == 0 {
		decodeIntField(payload, "sellerCount", &out.SellerCount)
		decodeIntField(payload, "buyerCount", &out.BuyerCount)
	}
	return out, nil
}

// decodeWrite reads the {success, message, data} write envelope. A missing
// success flag on a 2xx response counts as success.
func decodeWrite(body []byte, target any) (WriteResult, error) {
	if len(body) == 0 {
		return WriteResult{Success: true}, nil
	}
	var env struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return WriteResult{}, fmt.Errorf("decode write envelope: %w", err)
	}
	result := WriteResult{Success: env.Success == nil || *env.Success, Message: env.Message}
	if target != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return result, fmt.Errorf("decode write data: %w", err)
		}
	}
	return result, nil
}

// decodeObject reads single-object responses that may or may not be
// wrapped in "data".
func decodeObject(body []byte, target any) error {
	var outer rawEnvelope
	if err := json.Unmarshal(body, &outer); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if data, ok := outer["data"]; ok && isObject(data) {
		return json.Unmarshal(data, target)
	}
	return json.Unmarshal(body, target)
}

func decodeIntField(src rawEnvelope, key string, dst *int) {
	if raw, ok := src[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func isObject(raw json.RawMessage) bool {
	return firstByte(raw) == '{'
}

func isArray(raw json.RawMessage) bool {
	return firstByte(raw) == '['
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b
	}
	return 0
}
