package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type UploadHandler struct {
	uploadUsecase usecase.UploadUC
	maxFileSize   int64
	logger        logger.Logger
}

func NewUploadHandler(uploadUsecase usecase.UploadUC, maxFileSize int64, logger logger.Logger) *UploadHandler {
	return &UploadHandler{uploadUsecase: uploadUsecase, maxFileSize: maxFileSize, logger: logger}
}

// upload
//
//	@Summary		Загрузка изображения
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Изображение"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Router			/upload [post]
func (u *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readImageField(w, r, u.maxFileSize)
	if err != nil {
		u.logger.Warnf("upload: invalid request: %v", err)
		WriteError(w, err)
		return
	}

	res, err := u.uploadUsecase.UploadFile(r.Context(), &usecase.UploadFileReq{Filename: filename, Data: data})
	if err != nil {
		u.logger.Errorf(err, "upload %q failed", filename)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, UploadResponse{Filename: res.Filename, PreviewURL: res.PreviewURL, Message: res.Message})
}

// uploadURL
//
//	@Summary		Загрузка изображения по ссылке
//	@Tags			upload
//	@Accept			json
//	@Produce		json
//	@Param			request	body		URLRequest	true	"Ссылка на изображение"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		408		{object}	ErrorResponse
//	@Router			/upload-url [post]
func (u *UploadHandler) uploadURL(w http.ResponseWriter, r *http.Request) {
	res, err := u.uploadUsecase.UploadFromURL(r.Context(), &usecase.UploadURLReq{URL: readURLField(w, r)})
	if err != nil {
		u.logger.Errorf(err, "upload from url failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, UploadResponse{Filename: res.Filename, PreviewURL: res.PreviewURL, Message: res.Message})
}

// serveUpload
//
//	@Summary		Предпросмотр загруженного изображения
//	@Tags			upload
//	@Produce		image/png,image/jpeg,image/gif,image/webp
//	@Param			filename	path		string	true	"Имя файла"
//	@Success		200			{file}		binary
//	@Failure		404			{object}	ErrorResponse
//	@Router			/uploads/{filename} [get]
func (u *UploadHandler) serveUpload(w http.ResponseWriter, r *http.Request) {
	img, err := u.uploadUsecase.GetUpload(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}
