package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const folderMIME = "application/vnd.google-apps.folder"

// DriveClient talks to the Google Drive v3 REST API. The access token is
// an opaque credential supplied by the caller and passed through unchanged;
// token acquisition and refresh live outside this service.
type DriveClient struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewDriveClient(baseURL, token string) *DriveClient {
	return &DriveClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

type driveFile struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
	MimeType string   `json:"mimeType,omitempty"`
	Parents  []string `json:"parents,omitempty"`
}

type driveFileList struct {
	Files []driveFile `json:"files"`
}

// escapeQuery escapes a value for embedding in a Drive query string.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func (c *DriveClient) do(ctx context.Context, method, rawURL string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.http.Do(req)
}

func remoteErr(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &Error{Op: op, Err: fmt.Errorf("drive status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))}
}

// FindOrCreateFolder looks up a folder by exact name under parentID and
// creates it when absent.
func (c *DriveClient) FindOrCreateFolder(ctx context.Context, name, parentID string) (id string, err error) {
	start := time.Now()
	defer func() { observe("find_or_create_folder", start, err) }()

	q := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
		escapeQuery(name), escapeQuery(parentID), folderMIME)
	listURL := fmt.Sprintf("%s/drive/v3/files?q=%s&fields=files(id,name)&pageSize=10",
		c.baseURL, url.QueryEscape(q))

	resp, err := c.do(ctx, http.MethodGet, listURL, "", nil)
	if err != nil {
		return "", &Error{Op: "find_or_create_folder", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", remoteErr("find_or_create_folder", resp)
	}

	var list driveFileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", &Error{Op: "find_or_create_folder", Err: err}
	}
	if len(list.Files) > 0 {
		return list.Files[0].ID, nil
	}

	meta, _ := json.Marshal(driveFile{Name: name, MimeType: folderMIME, Parents: []string{parentID}})
	createURL := fmt.Sprintf("%s/drive/v3/files?fields=id", c.baseURL)
	resp2, err := c.do(ctx, http.MethodPost, createURL, "application/json", bytes.NewReader(meta))
	if err != nil {
		return "", &Error{Op: "find_or_create_folder", Err: err}
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		return "", remoteErr("find_or_create_folder", resp2)
	}

	var created driveFile
	if err := json.NewDecoder(resp2.Body).Decode(&created); err != nil {
		return "", &Error{Op: "find_or_create_folder", Err: err}
	}
	log.Info().Str("folder", name).Str("parent", parentID).Str("id", created.ID).Msg("created drive folder")
	return created.ID, nil
}

// UploadFile uploads bytes as a named file via a multipart/related request.
func (c *DriveClient) UploadFile(ctx context.Context, data []byte, name, parentFolderID, mimeType string) (id string, err error) {
	start := time.Now()
	defer func() { observe("upload_file", start, err) }()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	metaHdr := textproto.MIMEHeader{}
	metaHdr.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := w.CreatePart(metaHdr)
	if err != nil {
		return "", &Error{Op: "upload_file", Err: err}
	}
	meta, _ := json.Marshal(driveFile{Name: name, Parents: []string{parentFolderID}})
	if _, err := metaPart.Write(meta); err != nil {
		return "", &Error{Op: "upload_file", Err: err}
	}

	mediaHdr := textproto.MIMEHeader{}
	mediaHdr.Set("Content-Type", mimeType)
	mediaPart, err := w.CreatePart(mediaHdr)
	if err != nil {
		return "", &Error{Op: "upload_file", Err: err}
	}
	if _, err := mediaPart.Write(data); err != nil {
		return "", &Error{Op: "upload_file", Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &Error{Op: "upload_file", Err: err}
	}

	uploadURL := fmt.Sprintf("%s/upload/drive/v3/files?uploadType=multipart&fields=id", c.baseURL)
	contentType := fmt.Sprintf("multipart/related; boundary=%s", w.Boundary())
	resp, err := c.do(ctx, http.MethodPost, uploadURL, contentType, &body)
	if err != nil {
		return "", &Error{Op: "upload_file", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", remoteErr("upload_file", resp)
	}

	var created driveFile
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", &Error{Op: "upload_file", Err: err}
	}
	log.Info().Str("file", name).Str("parent", parentFolderID).Str("id", created.ID).Int("size", len(data)).Msg("uploaded file to drive")
	return created.ID, nil
}

// ListSubfolders returns the immediate subfolders of parentID. An empty
// list is a valid result.
func (c *DriveClient) ListSubfolders(ctx context.Context, parentID string) (folders []Folder, err error) {
	start := time.Now()
	defer func() { observe("list_subfolders", start, err) }()

	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", escapeQuery(parentID), folderMIME)
	listURL := fmt.Sprintf("%s/drive/v3/files?q=%s&fields=files(id,name)&pageSize=1000&orderBy=name",
		c.baseURL, url.QueryEscape(q))

	resp, err := c.do(ctx, http.MethodGet, listURL, "", nil)
	if err != nil {
		return nil, &Error{Op: "list_subfolders", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, remoteErr("list_subfolders", resp)
	}

	var list driveFileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &Error{Op: "list_subfolders", Err: err}
	}

	folders = make([]Folder, 0, len(list.Files))
	for _, f := range list.Files {
		folders = append(folders, Folder{ID: f.ID, Name: f.Name})
	}
	return folders, nil
}
