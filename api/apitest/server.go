// Package apitest provides an in-memory COS v4 server for tests.
package apitest

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

type Object struct {
	Data          []byte
	SHA           string
	Ctime         int64
	Mtime         int64
	Authority     string
	BizAttr       string
	CustomHeaders map[string]string
}

type Request struct {
	Method        string
	Op            string
	Path          string
	Authorization string
	UserAgent     string
	Fields        map[string]any
}

type reply struct {
	code    int
	message string
	garbage bool
	raw     string
}

type session struct {
	path       string
	size       int64
	sha        string
	bizAttr    string
	insertOnly bool
	data       []byte
}

// Server serves the v4 API under /files/v2/{appid}/{bucket}/ and raw object
// downloads on every other path.
type Server struct {
	*httptest.Server
	AppID  string
	Bucket string

	mu       sync.Mutex
	objects  map[string]*Object
	folders  map[string]int64
	sessions map[string]*session
	replies  map[string][]reply
	requests []Request
	now      func() int64
}

func NewServer(appID, bucket string) *Server {
	s := &Server{
		AppID:    appID,
		Bucket:   bucket,
		objects:  make(map[string]*Object),
		folders:  make(map[string]int64),
		sessions: make(map[string]*session),
		replies:  make(map[string][]reply),
		now:      func() int64 { return time.Now().Unix() },
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

func (s *Server) prefix() string {
	return fmt.Sprintf("/files/v2/%s/%s/", s.AppID, s.Bucket)
}

// Fail makes the next call of op answer with code and message.
func (s *Server) Fail(op string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[op] = append(s.replies[op], reply{code: code, message: message})
}

// Garble makes the next call of op answer with a body that is not JSON.
func (s *Server) Garble(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[op] = append(s.replies[op], reply{garbage: true})
}

// Reply makes the next call of op answer with body as is.
func (s *Server) Reply(op, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[op] = append(s.replies[op], reply{raw: body})
}

// Put stores an object directly.
func (s *Server) Put(p string, data []byte) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(strings.TrimLeft(p, "/"), data, "")
}

func (s *Server) Object(p string) (*Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[strings.TrimLeft(p, "/")]
	return o, ok
}

func (s *Server) HasFolder(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.folders[strings.Trim(p, "/")+"/"]
	return ok
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Ops returns the operations received so far, in order.
func (s *Server) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		ops = append(ops, r.Op)
	}
	return ops
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, s.prefix()) {
		s.serveDownload(w, r)
		return
	}

	p := strings.TrimPrefix(r.URL.Path, s.prefix())
	fields, err := parseFields(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	op, _ := fields["op"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Op:            op,
		Path:          p,
		Authorization: r.Header.Get("Authorization"),
		UserAgent:     r.Header.Get("User-Agent"),
		Fields:        fields,
	})

	if queued := s.replies[op]; len(queued) > 0 {
		s.replies[op] = queued[1:]
		if queued[0].garbage {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
			return
		}
		if queued[0].raw != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, queued[0].raw)
			return
		}
		writeJSON(w, queued[0].code, queued[0].message, nil)
		return
	}

	var (
		code    int
		message = "SUCCESS"
		data    map[string]any
	)
	switch op {
	case "upload":
		code, message, data = s.upload(p, fields)
	case "upload_slice_init":
		code, message, data = s.sliceInit(p, fields)
	case "upload_slice_data":
		code, message, data = s.sliceData(fields)
	case "upload_slice_finish":
		code, message, data = s.sliceFinish(fields)
	case "move", "copy":
		code, message = s.transfer(op, p, fields)
	case "delete":
		code, message = s.delete(p)
	case "create":
		code, message, data = s.create(p, fields)
	case "list":
		code, message, data = s.list(p, r)
	case "stat":
		code, message, data = s.stat(p)
	case "update":
		code, message = s.update(p, fields)
	default:
		code, message = -1, "unknown op "+op
	}
	writeJSON(w, code, message, data)
}

func parseFields(r *http.Request) (map[string]any, error) {
	fields := make(map[string]any)
	if r.Method == http.MethodGet {
		for k := range r.URL.Query() {
			fields[k] = r.URL.Query().Get(k)
		}
		return fields, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			return nil, err
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unexpected content type %q", mediaType)
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, code int, message string, data map[string]any) {
	body := map[string]any{
		"code":       code,
		"message":    message,
		"request_id": "apitest",
	}
	if data != nil {
		body["data"] = data
	}
	w.Header().Set("Content-Type", "application/json")
	if code != 0 {
		w.WriteHeader(http.StatusBadRequest)
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) serveDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	o, ok := s.objects[strings.TrimLeft(r.URL.Path, "/")]
	s.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>")
		return
	}
	if ct := o.CustomHeaders["Content-Type"]; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(o.Data)))
	_, _ = w.Write(o.Data)
}

func (s *Server) store(p string, data []byte, bizAttr string) *Object {
	sum := sha1.Sum(data)
	now := s.now()
	o := &Object{
		Data:          append([]byte(nil), data...),
		SHA:           hex.EncodeToString(sum[:]),
		Ctime:         now,
		Mtime:         now,
		Authority:     "eInvalid",
		BizAttr:       bizAttr,
		CustomHeaders: map[string]string{},
	}
	if prev, ok := s.objects[p]; ok {
		o.Ctime = prev.Ctime
		o.Authority = prev.Authority
	}
	s.objects[p] = o
	s.mkdirAll(p)
	return o
}

func (s *Server) mkdirAll(p string) {
	parts := strings.Split(p, "/")
	for i := 1; i < len(parts); i++ {
		dir := strings.Join(parts[:i], "/") + "/"
		if _, ok := s.folders[dir]; !ok {
			s.folders[dir] = s.now()
		}
	}
}

func (s *Server) conflict(p, sha string, insertOnly bool) (int, string) {
	o, ok := s.objects[p]
	if !ok || !insertOnly {
		return 0, ""
	}
	if o.SHA == sha {
		return -4018, "same file already uploaded"
	}
	return -177, "index already exists"
}

func (s *Server) uploaded(p string) map[string]any {
	u := s.URL + "/" + p
	return map[string]any{
		"access_url":    u,
		"resource_path": fmt.Sprintf("/%s/%s/%s", s.AppID, s.Bucket, p),
		"source_url":    u,
		"url":           u,
		"vid":           "apitest-vid",
	}
}

func (s *Server) upload(p string, f map[string]any) (int, string, map[string]any) {
	content := str(f, "filecontent")
	sum := sha1.Sum([]byte(content))
	sha := hex.EncodeToString(sum[:])
	if want := str(f, "sha"); want != "" && want != sha {
		return -3, "sha mismatch", nil
	}
	if code, msg := s.conflict(p, sha, str(f, "insertOnly") == "1"); code != 0 {
		return code, msg, nil
	}
	s.store(p, []byte(content), str(f, "biz_attr"))
	return 0, "SUCCESS", s.uploaded(p)
}

func (s *Server) sliceInit(p string, f map[string]any) (int, string, map[string]any) {
	if code, msg := s.conflict(p, str(f, "sha"), str(f, "insertOnly") == "1"); code != 0 {
		return code, msg, nil
	}
	size, _ := strconv.ParseInt(str(f, "filesize"), 10, 64)
	sliceSize, _ := strconv.ParseInt(str(f, "slice_size"), 10, 64)
	id := fmt.Sprintf("session-%d", len(s.sessions)+1)
	s.sessions[id] = &session{
		path:       p,
		size:       size,
		sha:        str(f, "sha"),
		bizAttr:    str(f, "biz_attr"),
		insertOnly: str(f, "insertOnly") == "1",
		data:       make([]byte, size),
	}
	return 0, "SUCCESS", map[string]any{"session": id, "slice_size": sliceSize, "serial_upload": 1}
}

func (s *Server) sliceData(f map[string]any) (int, string, map[string]any) {
	sess, ok := s.sessions[str(f, "session")]
	if !ok {
		return -1, "session not found", nil
	}
	offset, _ := strconv.ParseInt(str(f, "offset"), 10, 64)
	content := str(f, "filecontent")
	if offset < 0 || offset+int64(len(content)) > sess.size {
		return -1, "slice out of range", nil
	}
	copy(sess.data[offset:], content)
	return 0, "SUCCESS", map[string]any{"session": str(f, "session"), "offset": offset}
}

func (s *Server) sliceFinish(f map[string]any) (int, string, map[string]any) {
	id := str(f, "session")
	sess, ok := s.sessions[id]
	if !ok {
		return -1, "session not found", nil
	}
	delete(s.sessions, id)
	sum := sha1.Sum(sess.data)
	if hex.EncodeToString(sum[:]) != sess.sha {
		return -3, "sha mismatch", nil
	}
	s.store(sess.path, sess.data, sess.bizAttr)
	return 0, "SUCCESS", s.uploaded(sess.path)
}

func (s *Server) transfer(op, p string, f map[string]any) (int, string) {
	o, ok := s.objects[p]
	if !ok {
		return -166, "index not exist"
	}
	dst := strings.TrimLeft(str(f, "dest_fileid"), "/")
	if _, exists := s.objects[dst]; exists && str(f, "to_over_write") != "1" {
		return -177, "index already exists"
	}
	cp := *o
	cp.Data = append([]byte(nil), o.Data...)
	s.objects[dst] = &cp
	s.mkdirAll(dst)
	if op == "move" {
		delete(s.objects, p)
	}
	return 0, "SUCCESS"
}

func (s *Server) delete(p string) (int, string) {
	if strings.HasSuffix(p, "/") {
		if _, ok := s.folders[p]; !ok {
			return -166, "index not exist"
		}
		if len(s.children(p)) > 0 {
			return -173, "directory not empty"
		}
		delete(s.folders, p)
		return 0, "SUCCESS"
	}
	if _, ok := s.objects[p]; !ok {
		return -166, "index not exist"
	}
	delete(s.objects, p)
	return 0, "SUCCESS"
}

func (s *Server) create(p string, f map[string]any) (int, string, map[string]any) {
	if _, ok := s.folders[p]; ok {
		return -177, "index already exists", nil
	}
	s.mkdirAll(p)
	now := s.now()
	s.folders[p] = now
	return 0, "SUCCESS", map[string]any{"ctime": now, "resource_path": fmt.Sprintf("/%s/%s/%s", s.AppID, s.Bucket, p)}
}

// children 返回目录下的直接子项，目录以 / 结尾
func (s *Server) children(dir string) []string {
	var names []string
	for k := range s.objects {
		if rest, ok := strings.CutPrefix(k, dir); ok && rest != "" && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	for k := range s.folders {
		if rest, ok := strings.CutPrefix(k, dir); ok && rest != "" && strings.Count(rest, "/") == 1 && strings.HasSuffix(rest, "/") {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Server) list(dir string, r *http.Request) (int, string, map[string]any) {
	if _, ok := s.folders[dir]; dir != "" && !ok {
		return -166, "index not exist", nil
	}
	q := r.URL.Query()
	num, _ := strconv.Atoi(q.Get("num"))
	if num <= 0 {
		num = 199
	}
	start, _ := strconv.Atoi(q.Get("context"))

	names := s.children(dir)
	end := start + num
	if end > len(names) {
		end = len(names)
	}
	if start > end {
		start = end
	}

	infos := make([]any, 0, end-start)
	var dirs, files int
	for _, name := range names[start:end] {
		if strings.HasSuffix(name, "/") {
			dirs++
			ctime := s.folders[dir+name]
			infos = append(infos, map[string]any{
				"name":     strings.TrimSuffix(name, "/"),
				"biz_attr": "",
				"ctime":    ctime,
				"mtime":    ctime,
			})
			continue
		}
		files++
		infos = append(infos, s.fileInfo(dir+name, name))
	}

	return 0, "SUCCESS", map[string]any{
		"context":   strconv.Itoa(end),
		"listover":  end >= len(names),
		"infos":     infos,
		"dircount":  dirs,
		"filecount": files,
	}
}

func (s *Server) fileInfo(p, name string) map[string]any {
	o := s.objects[p]
	headers := make(map[string]any, len(o.CustomHeaders))
	for k, v := range o.CustomHeaders {
		headers[k] = v
	}
	return map[string]any{
		"name":           name,
		"filesize":       len(o.Data),
		"filelen":        len(o.Data),
		"sha":            o.SHA,
		"ctime":          o.Ctime,
		"mtime":          o.Mtime,
		"access_url":     s.URL + "/" + p,
		"authority":      o.Authority,
		"biz_attr":       o.BizAttr,
		"custom_headers": headers,
	}
}

func (s *Server) stat(p string) (int, string, map[string]any) {
	if strings.HasSuffix(p, "/") || p == "" {
		ctime, ok := s.folders[p]
		if !ok && p != "" {
			return -166, "index not exist", nil
		}
		return 0, "SUCCESS", map[string]any{
			"name":     strings.TrimSuffix(p, "/"),
			"biz_attr": "",
			"ctime":    ctime,
			"mtime":    ctime,
		}
	}
	if _, ok := s.objects[p]; !ok {
		return -166, "index not exist", nil
	}
	return 0, "SUCCESS", s.fileInfo(p, p[strings.LastIndex(p, "/")+1:])
}

func (s *Server) update(p string, f map[string]any) (int, string) {
	o, ok := s.objects[p]
	if !ok {
		return -166, "index not exist"
	}
	flag, _ := f["flag"].(float64)
	if int(flag)&0x01 != 0 {
		o.BizAttr = str(f, "biz_attr")
	}
	if int(flag)&0x80 != 0 {
		o.Authority = str(f, "authority")
	}
	if int(flag)&0x40 != 0 {
		headers, _ := f["custom_headers"].(map[string]any)
		for k, v := range headers {
			o.CustomHeaders[k] = fmt.Sprint(v)
		}
	}
	o.Mtime = s.now()
	return 0, "SUCCESS"
}

func str(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}
