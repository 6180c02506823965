// Command example is a minimal demo of using an opentoken.Codec to
// protect a login session cookie. It mirrors the teacher package's own
// HTTP cookie demo, adapted to OpenToken's claim-based payload and
// suite-based encryption instead of a single shared-secret stream cipher.
package main

import (
	"html/template"
	"log"
	"net/http"
	"time"

	opentoken "github.com/yoonjesung/go-opentoken"
)

var unsafePassword = "correct horse battery staple"
var codec *opentoken.Codec
var cookieName = "session"

func main() {
	http.HandleFunc("/", handleHome)
	http.HandleFunc("/login", handleLogin)
	http.HandleFunc("/logout", handleLogout)

	var err error
	codec, err = opentoken.NewFromPassword(
		unsafePassword,
		opentoken.WithSuite(opentoken.SuiteAES128CBC),
		opentoken.WithLifetime(24*time.Hour),
	)
	if err != nil {
		panic(err)
	}

	log.Println("Demo running at http://localhost:8080")
	log.Fatal(http.ListenAndServe(":8080", nil))
}

var homeTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
	<head></head>
	<body>
		{{if .Email}}
			<p>Token: {{.Token}}</p>
			<p>You are signed in as {{.Email}}</p>
			<form action="logout" method="POST">
				<input type="submit" value="Logout"/>
			</form>
		{{else}}
			<form action="login" method="POST">
				Email: <input type="email" name="email" />
				<input type="submit" value="Login"/>
			</form>
		{{end}}
	</body>
</html>
`))

func handleHome(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		homeTemplate.Execute(w, nil)
		return
	}
	claims, err := codec.Parse(c.Value)
	if err != nil {
		// The token is missing, expired, or was tampered with; treat the
		// visitor as signed out rather than failing the request.
		homeTemplate.Execute(w, nil)
		return
	}
	email, _ := claims.Get(opentoken.ClaimSubject)
	homeTemplate.Execute(w, map[string]string{
		"Token": c.Value,
		"Email": email,
	})
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	token, err := codec.Create(opentoken.NewPairs(opentoken.ClaimSubject, email))
	if err != nil {
		panic(err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Expires:  time.Unix(1, 0),
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
