package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/recall"
	"github.com/rushteam/tastekit/recommend"
)

// maxBodyBytes 请求体大小上限
const maxBodyBytes = 1 << 20

var validate = validator.New()

// Handler 持有路由所需的服务依赖。
type Handler struct {
	Service *recommend.Service
	Ratings recall.RatingsStore
	// MaxRating 评分上限，0 表示不限
	MaxRating float64
}

type scoredJSON struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type recommendResponse struct {
	Strategy string       `json:"strategy"`
	Schema   string       `json:"schema"`
	Count    int          `json:"count"`
	Results  []scoredJSON `json:"results"`
}

type ratingRequest struct {
	Rating *float64 `json:"rating" validate:"required,gte=0"`
}

// Healthz 存活检查。
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Recommend 处理 POST /recommend 与 POST /recommend/{category}。
// 请求体为 属性名 -> 数值 的 JSON 对象；策略、度量等通过查询参数传入。
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	req, err := parseRecommendRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.Service.Recommend(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := recommendResponse{
		Strategy: res.Strategy,
		Schema:   res.Schema,
		Count:    len(res.Items),
		Results:  make([]scoredJSON, 0, len(res.Items)),
	}
	for _, s := range res.Items {
		out.Results = append(out.Results, scoredJSON{Name: s.ID, Score: s.Score})
	}
	respondJSON(w, http.StatusOK, out)
}

// PutRating 处理 PUT /users/{userID}/ratings/{item}，写入 cf 策略使用的评分。
func (h *Handler) PutRating(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "userID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	item, err := pathParam(r, "item")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var body ratingRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		respondError(w, r, core.InvalidPayloadError("body must be {\"rating\": <number>}"))
		return
	}
	if err := validate.Struct(body); err != nil {
		de := core.InvalidPayloadError("rating must be a number >= 0")
		de.Attribute = "rating"
		respondError(w, r, de)
		return
	}
	if math.IsInf(*body.Rating, 0) || math.IsNaN(*body.Rating) {
		respondError(w, r, core.InvalidPayloadError("rating must be finite"))
		return
	}
	if h.MaxRating > 0 && *body.Rating > h.MaxRating {
		respondError(w, r, invalidParam("rating", fmt.Sprintf("rating must be <= %v", h.MaxRating)))
		return
	}

	if err := h.Ratings.AddRating(r.Context(), userID, item, *body.Rating); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseRecommendRequest(r *http.Request) (*recommend.Request, error) {
	prefs, err := decodePreferences(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	category, err := urlParam(r, "category")
	if err != nil {
		return nil, err
	}

	q := r.URL.Query()
	req := &recommend.Request{
		Category:    category,
		Preferences: prefs,
		Strategy:    q.Get("strategy"),
		Metric:      q.Get("metric"),
		Filter:      q.Get("filter"),
		UserID:      q.Get("user_id"),
	}
	if req.Limit, err = intParam(q, "limit"); err != nil {
		return nil, err
	}
	if req.PerCategory, err = intParam(q, "per_category"); err != nil {
		return nil, err
	}
	if v := q.Get("exclude_rated"); v != "" {
		if req.ExcludeRated, err = strconv.ParseBool(v); err != nil {
			return nil, invalidParam("exclude_rated", "exclude_rated must be a boolean")
		}
	}
	return req, nil
}

// decodePreferences 解析请求体；必须是单个 JSON 对象，数值保留为 json.Number 交给服务层校验。
// 空请求体视为空对象，由服务层决定是否接受。
func decodePreferences(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, core.InvalidPayloadError("malformed JSON body")
	}
	if dec.More() {
		return nil, core.InvalidPayloadError("body must contain a single JSON object")
	}
	prefs, ok := raw.(map[string]any)
	if !ok {
		return nil, core.InvalidPayloadError("body must be a JSON object of attribute -> number")
	}
	return prefs, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalidParam(name, name+" must be an integer")
	}
	return n, nil
}

// urlParam 读取路由参数。
// chi 在 RawPath 非空时按转义后的路径匹配，此时需要再解码一次；否则参数已是解码结果。
func urlParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v, nil
	}
	u, err := url.PathUnescape(v)
	if err != nil {
		return "", invalidParam(name, "malformed "+name)
	}
	return u, nil
}

func pathParam(r *http.Request, name string) (string, error) {
	v, err := urlParam(r, name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", invalidParam(name, "malformed "+name)
	}
	return v, nil
}

func invalidParam(attribute, message string) error {
	de := core.InvalidPayloadError(message)
	de.Attribute = attribute
	return de
}
