package main

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gate-protocol/listener-go/pkg/listener"
)

// faviconICO is a one-pixel 4x4 monochrome icon.
var faviconICO = []byte{
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x04, 0x04, 0x02, 0x00, 0x01, 0x00, 0x01,
	0x00, 0x50, 0x00, 0x00, 0x00, 0x16, 0x00, 0x00, 0x00, 0x28, 0x00, 0x00, 0x00,
	0x04, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x60, 0x00, 0x00, 0x00,
	0x60, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// maxRequestSize bounds how much of a request is buffered before the
// connection is dropped.
const maxRequestSize = 64 * 1024

// handleConn reads one HTTP/1.1 request, writes one response and closes
// the connection.
func handleConn(conn *listener.Conn, hostname string) {
	defer conn.Stream.Close()

	buf := make([]byte, 0, 512)
	chunk := make([]byte, 512)
	for {
		n, err := conn.Stream.Read(chunk)
		if err != nil {
			log.Printf("Read error from %s: %v", conn.PeerAddr, err)
			return
		}
		buf = append(buf, chunk[:n]...)
		if bytes.Contains(buf, []byte("\r\n\r\n")) {
			break
		}
		if len(buf) > maxRequestSize {
			log.Printf("Request from %s too large", conn.PeerAddr)
			return
		}
	}

	method, path, ok := parseRequestLine(buf)
	if !ok {
		log.Printf("Malformed request from %s", conn.PeerAddr)
		return
	}

	handleRequest(conn, hostname, method, path)
}

// parseRequestLine extracts the method and path from the first line of
// an HTTP request.
func parseRequestLine(buf []byte) (method, path string, ok bool) {
	end := bytes.IndexByte(buf, '\n')
	if end < 0 {
		return "", "", false
	}
	line := strings.TrimRight(string(buf[:end]), "\r")
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), parts[1], true
}

func handleRequest(conn *listener.Conn, hostname, method, path string) {
	now := time.Now().UTC()

	var code int
	var status string
	contentType := "application/octet-stream"
	var extraHeaders string
	var content []byte

	switch method {
	case "GET":
		switch path {
		case "/":
			code = 302
			status = "Found"
			contentType = "text/html"
			const location = "/hello"
			extraHeaders = fmt.Sprintf("Location: %s\r\n", location)
			content = []byte(fmt.Sprintf("Go to <a href=%q>%s</a>\n", location, location))

		case "/favicon.ico":
			code = 200
			status = "OK"
			contentType = "image/x-icon"
			content = faviconICO

		case "/hello":
			code = 200
			status = "OK"
			contentType = "text/html"
			content = []byte("<title>listener example</title> <b>Hello, world</b>\n")

		default:
			code = 404
			status = "Not Found"
		}

	default:
		code = 405
		status = "Method Not Supported"
	}

	if code >= 400 {
		contentType = "text/html"
		content = []byte(fmt.Sprintf("<h1>Error</h1> <code>%s</code>\n", status))
	}

	header := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nHost: %s\r\nContent-Type: %s\r\nContent-Length: %d\r\nConnection: close\r\nCache-Control: no-cache\r\n%s\r\n",
		code, status, hostname, contentType, len(content), extraHeaders,
	)

	if _, err := conn.Stream.Write([]byte(header)); err != nil {
		log.Printf("Write error to %s: %v", conn.PeerAddr, err)
		return
	}
	if _, err := conn.Stream.Write(content); err != nil {
		log.Printf("Write error to %s: %v", conn.PeerAddr, err)
		return
	}

	log.Printf("%s [%s] %s %s %d %d",
		conn.PeerAddr.Addr(), now.Format(time.RFC3339), method, path, code, len(content))
}
