// Package richtext приводит ссылки в html-значениях полей к единому виду.
package richtext

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const blank = "about:blank"

var allowedSchemes = map[string]struct{}{
	"http": {}, "https": {}, "mailto": {}, "tel": {},
}

// SanitizeLink оставляет http, https, mailto, tel и относительные ссылки,
// остальное заменяет на about:blank.
func SanitizeLink(href string) string {
	href = strings.TrimSpace(href)
	if isLocal(href) {
		return href
	}
	// управляющие символы внутри схемы ("java\tscript:") браузер выкидывает
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, href)
	u, err := url.Parse(cleaned)
	if err != nil {
		return blank
	}
	if u.Scheme == "" {
		return href
	}
	if _, ok := allowedSchemes[strings.ToLower(u.Scheme)]; ok {
		return href
	}
	return blank
}

func isLocal(href string) bool {
	return strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#")
}

// RewriteLinks проходит по всем <a href> фрагмента: href санируется,
// локальные ссылки (/ и #) теряют target и rel, внешние открываются в новой
// вкладке с rel="noopener noreferrer".
func RewriteLinks(fragment string) (string, error) {
	if !strings.Contains(fragment, "<") {
		return fragment, nil
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walk(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		rewriteAnchor(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
}

func rewriteAnchor(n *html.Node) {
	href, ok := attr(n, "href")
	if !ok {
		return
	}
	href = SanitizeLink(href)
	setAttr(n, "href", href)
	if isLocal(href) {
		removeAttr(n, "target")
		removeAttr(n, "rel")
		return
	}
	setAttr(n, "target", "_blank")
	setAttr(n, "rel", "noopener noreferrer")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}
