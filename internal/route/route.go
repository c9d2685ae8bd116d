// Package route maps URL fragments such as "#/expert/career-coach" to the
// view that renders them. Unknown paths resolve to the landing view.
package route

import (
	"net/url"
	"strings"
)

type View string

const (
	ViewLanding         View = "landing"
	ViewExperts         View = "experts"
	ViewExpert          View = "expert"
	ViewCheckout        View = "checkout"
	ViewSuccess         View = "success"
	ViewLeads           View = "leads"
	ViewApply           View = "apply"
	ViewExpertDashboard View = "dash_expert"
	ViewClientDashboard View = "dash_client"
	ViewLogs            View = "logs"
	ViewQA              View = "qa"
)

const expertPrefix = "/expert/"

var staticRoutes = map[string]View{
	"/":            ViewLanding,
	"/experts":     ViewExperts,
	"/checkout":    ViewCheckout,
	"/success":     ViewSuccess,
	"/leads":       ViewLeads,
	"/apply":       ViewApply,
	"/dash/expert": ViewExpertDashboard,
	"/dash/client": ViewClientDashboard,
	"/logs":        ViewLogs,
	"/qa":          ViewQA,
}

type Route struct {
	View  View       `json:"view"`
	Path  string     `json:"path"`
	Slug  string     `json:"slug,omitempty"`
	Query url.Values `json:"query,omitempty"`
}

// Topic is the catalog filter, "all" when absent.
func (r Route) Topic() string {
	if t := strings.TrimSpace(r.Query.Get("topic")); t != "" {
		return t
	}
	return "all"
}

// BookingID is the booking referenced by checkout and success routes.
func (r Route) BookingID() string {
	return strings.TrimSpace(r.Query.Get("booking"))
}

// Resolve parses a fragment with or without the leading '#'. The path is the
// part before '?'; the rest is parsed as query parameters.
func Resolve(fragment string) Route {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	path, rawQuery, _ := strings.Cut(fragment, "?")
	if path == "" {
		path = "/"
	}
	// Malformed pairs are dropped; the well-formed ones are still returned.
	query, _ := url.ParseQuery(rawQuery)

	if strings.HasPrefix(path, expertPrefix) {
		slug := path[len(expertPrefix):]
		if decoded, err := url.PathUnescape(slug); err == nil {
			slug = decoded
		}
		return Route{View: ViewExpert, Path: path, Slug: slug, Query: query}
	}

	if view, ok := staticRoutes[path]; ok {
		return Route{View: view, Path: path, Query: query}
	}
	return Route{View: ViewLanding, Path: path, Query: query}
}

func ExpertHref(slug string) string {
	return "#" + expertPrefix + url.PathEscape(slug)
}

func ExpertsHref(topic string) string {
	if topic == "" || topic == "all" {
		return "#/experts"
	}
	return "#/experts?topic=" + url.QueryEscape(topic)
}

func CheckoutHref(bookingID string) string {
	return "#/checkout?booking=" + url.QueryEscape(bookingID)
}

func SuccessHref(bookingID string) string {
	return "#/success?booking=" + url.QueryEscape(bookingID)
}
