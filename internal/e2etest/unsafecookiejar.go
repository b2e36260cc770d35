package e2etest

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/myrjola/surprise/internal/errors"
)

// unsafeCookieJar drops the Secure flag so that the session and CSRF cookies are sent over plain HTTP to test
// servers and local deployments.
type unsafeCookieJar struct {
	jar *cookiejar.Jar
}

func newUnsafeCookieJar() (*unsafeCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}

	return &unsafeCookieJar{jar: jar}, nil
}

func (u *unsafeCookieJar) SetCookies(target *url.URL, cookies []*http.Cookie) {
	for _, cookie := range cookies {
		cookie.Secure = false
	}
	u.jar.SetCookies(target, cookies)
}

func (u *unsafeCookieJar) Cookies(target *url.URL) []*http.Cookie {
	return u.jar.Cookies(target)
}
