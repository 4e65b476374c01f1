package http

import (
	"net/http"

	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
)

type SearchHandler struct {
	searchUsecase usecase.SearchUC
	maxFileSize   int64
	logger        logger.Logger
}

func NewSearchHandler(searchUsecase usecase.SearchUC, maxFileSize int64, logger logger.Logger) *SearchHandler {
	return &SearchHandler{searchUsecase: searchUsecase, maxFileSize: maxFileSize, logger: logger}
}

// searchByFile
//
//	@Summary		Поиск по загруженному изображению
//	@Description	Возвращает товары, визуально похожие на изображение, по убыванию оценки
//	@Tags			search
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image		formData	file			true	"Изображение (png, jpg, jpeg, gif, webp)"
//	@Param			limit		query		int				false	"Максимум результатов (1-100)"		default(20)
//	@Param			min_score	query		number			false	"Минимальная оценка (0-1)"			default(0)
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		413			{object}	ErrorResponse	"Файл слишком большой"
//	@Failure		422			{object}	ErrorResponse	"Не удалось получить эмбеддинг"
//	@Router			/search [post]
func (s *SearchHandler) searchByFile(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readImageField(w, r, s.maxFileSize)
	if err != nil {
		s.logger.Warnf("search: invalid upload: %v", err)
		WriteError(w, err)
		return
	}

	res, err := s.searchUsecase.SearchByImage(r.Context(), &usecase.SearchByImageReq{
		Filename: filename,
		Data:     data,
		Params:   parseSearchParams(r),
	})
	if err != nil {
		s.logger.Errorf(err, "search by file %q failed", filename)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSearchResponse(res))
}

// searchByURL
//
//	@Summary		Поиск по изображению по ссылке
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			request		body		URLRequest		true	"Ссылка на изображение"
//	@Param			limit		query		int				false	"Максимум результатов (1-100)"		default(20)
//	@Param			min_score	query		number			false	"Минимальная оценка (0-1)"			default(0)
//	@Success		200			{object}	SearchResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		408			{object}	ErrorResponse	"Таймаут скачивания"
//	@Failure		422			{object}	ErrorResponse
//	@Router			/search-url [post]
func (s *SearchHandler) searchByURL(w http.ResponseWriter, r *http.Request) {
	res, err := s.searchUsecase.SearchByURL(r.Context(), &usecase.SearchByURLReq{
		URL:    readURLField(w, r),
		Params: parseSearchParams(r),
	})
	if err != nil {
		s.logger.Errorf(err, "search by url failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSearchResponse(res))
}
