// Package echo runs a small HTTP server that reports back every request it
// receives. It exists to exercise the fetch client by hand or in tests:
// the reply shows exactly which request line, headers and body arrived.
//
// Routes:
//
//	/                    echo the request as JSON
//	GET /status/{code}   reply with the given status code
//
// Replies are gzip-compressed when the request accepts it, and any origin
// may call the server from a browser.
//
// Basic usage:
//
//	srv := echo.New(echo.WithHost("127.0.0.1:2010"))
//	if err := srv.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package echo
