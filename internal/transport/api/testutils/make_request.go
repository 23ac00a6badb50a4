package testutils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
)

type RequestOptions struct {
	headers map[string]string
	cookies []*http.Cookie
}

type RequestArgs struct {
	Router http.Handler
	Method string
	URL    string
	Body   io.Reader
}

func MakeRequest(args RequestArgs, opts ...func(*RequestOptions)) (*http.Response, error) {
	options := RequestOptions{
		headers: make(map[string]string),
		cookies: nil,
	}
	for _, opt := range opts {
		opt(&options)
	}

	request := httptest.NewRequest(args.Method, args.URL, args.Body)
	if len(options.headers) > 0 {
		for k, v := range options.headers {
			request.Header.Set(k, v)
		}
	}

	if options.cookies != nil {
		for _, cookie := range options.cookies {
			request.AddCookie(cookie)
		}
	}

	recorder := httptest.NewRecorder()

	args.Router.ServeHTTP(recorder, request)

	return recorder.Result(), nil
}

func WithHeader(name, value string) func(*RequestOptions) {
	return func(fn *RequestOptions) {
		fn.headers[name] = value
	}
}

func WithCookies(c []*http.Cookie) func(*RequestOptions) {
	return func(fn *RequestOptions) {
		fn.cookies = c
	}
}

// MultipartFile собирает multipart тело c единственным файлом в поле fieldName.
// Возвращает тело и значение заголовка Content-Type.
func MultipartFile(fieldName, fileName, contentType string, content []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	header.Set("Content-Type", contentType)

	part, partErr := w.CreatePart(header)
	if partErr != nil {
		return nil, "", fmt.Errorf("creating multipart part: %s", partErr.Error())
	}
	if _, writeErr := part.Write(content); writeErr != nil {
		return nil, "", fmt.Errorf("writing multipart content: %s", writeErr.Error())
	}
	if closeErr := w.Close(); closeErr != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %s", closeErr.Error())
	}
	return &buf, w.FormDataContentType(), nil
}
