package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/okian/movies/internal/adapters/http/api"
	"github.com/okian/movies/internal/adapters/repository"
	service "github.com/okian/movies/internal/app"
	"github.com/okian/movies/internal/config"
	"github.com/okian/movies/internal/domain/model"
	"github.com/okian/movies/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

const (
	allowedOrigin  = "https://movies.com"
	rejectedOrigin = "https://evil.example"
)

func seed() []model.Movie {
	return []model.Movie{
		{ID: "m1", Title: "The Matrix", Year: 1999, Director: "Wachowski", Duration: 136, Poster: "https://img.example/m1", Genre: []string{"Action", "Sci-Fi"}, Rate: 8.7},
		{ID: "m2", Title: "Heat", Year: 1995, Director: "Michael Mann", Duration: 170, Poster: "https://img.example/m2", Genre: []string{"Crime", "Drama"}, Rate: 8.3},
		{ID: "m3", Title: "Interstellar", Year: 2014, Director: "Christopher Nolan", Duration: 169, Poster: "https://img.example/m3", Genre: []string{"Adventure", "Drama", "Sci-Fi"}, Rate: 8.6},
	}
}

type testServer struct {
	handler http.Handler
	svc     *service.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	svc := service.New(service.WithSeed(seed()))
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	srv := api.NewServer(svc, svc, api.WithAllowedOrigins(config.DefaultAllowedOrigins()))
	return &testServer{handler: srv.Handler(ctx), svc: svc}
}

func (ts *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) count() int {
	all, _ := ts.svc.List(context.Background(), "")
	return len(all)
}

func decodeMovie(rec *httptest.ResponseRecorder) model.Movie {
	var m model.Movie
	So(json.Unmarshal(rec.Body.Bytes(), &m), ShouldBeNil)
	return m
}

func decodeMovies(rec *httptest.ResponseRecorder) []model.Movie {
	var ms []model.Movie
	So(json.Unmarshal(rec.Body.Bytes(), &ms), ShouldBeNil)
	return ms
}

type issueBody struct {
	Error []struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeIssues(rec *httptest.ResponseRecorder) issueBody {
	var b issueBody
	So(json.Unmarshal(rec.Body.Bytes(), &b), ShouldBeNil)
	return b
}

func decodeError(rec *httptest.ResponseRecorder) string {
	var b struct {
		Error string `json:"error"`
	}
	So(json.Unmarshal(rec.Body.Bytes(), &b), ShouldBeNil)
	return b.Error
}

const dune = `{"title":"Dune","year":2021,"director":"D.V.","duration":155,"poster":"http://x","genre":["Sci-Fi"]}`

func TestRoot(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer(t)

		Convey("When requesting /", func() {
			rec := ts.do(http.MethodGet, "/", "")

			Convey("Then it greets", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"message":"Hola mundo"`)
			})
		})
	})
}

func TestListMovies(t *testing.T) {
	Convey("Given a seeded catalogue", t, func() {
		ts := newTestServer(t)

		Convey("When listing without a filter", func() {
			rec := ts.do(http.MethodGet, "/movies", "")

			Convey("Then every movie is returned in order", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				movies := decodeMovies(rec)
				So(len(movies), ShouldEqual, 3)
				So(movies[0].ID, ShouldEqual, "m1")
				So(movies[2].ID, ShouldEqual, "m3")
			})
		})

		Convey("When filtering by genre=sci-fi", func() {
			rec := ts.do(http.MethodGet, "/movies?genre=sci-fi", "")

			Convey("Then records tagged Sci-Fi match case-insensitively", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				movies := decodeMovies(rec)
				So(len(movies), ShouldEqual, 2)
				for _, m := range movies {
					So(m.HasGenre("Sci-Fi"), ShouldBeTrue)
				}
			})
		})

		Convey("When filtering by a genre nobody has", func() {
			rec := ts.do(http.MethodGet, "/movies?genre=Western", "")

			Convey("Then an empty list is returned, not an error", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(rec.Body.String()), ShouldEqual, "[]")
			})
		})
	})
}

func TestGetMovie(t *testing.T) {
	Convey("Given a seeded catalogue", t, func() {
		ts := newTestServer(t)

		Convey("When fetching a known id", func() {
			rec := ts.do(http.MethodGet, "/movies/m2", "")

			Convey("Then the record is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				m := decodeMovie(rec)
				So(m.ID, ShouldEqual, "m2")
				So(m.Title, ShouldEqual, "Heat")
			})
		})

		// Unknown ids answer 404 with a message instead of an empty response.
		Convey("When fetching an unknown id", func() {
			before := ts.count()
			rec := ts.do(http.MethodGet, "/movies/nope", "")

			Convey("Then it is a 404 and nothing changes", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(rec), ShouldEqual, "movie not found")
				So(ts.count(), ShouldEqual, before)
			})
		})
	})
}

func TestCreateMovie(t *testing.T) {
	Convey("Given a seeded catalogue", t, func() {
		ts := newTestServer(t)
		before := decodeMovies(ts.do(http.MethodGet, "/movies", ""))

		Convey("When posting a valid movie", func() {
			rec := ts.do(http.MethodPost, "/movies", dune)

			Convey("Then it is created with a fresh id and the default rate", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				created := decodeMovie(rec)
				So(created.ID, ShouldNotBeEmpty)
				So(created.Title, ShouldEqual, "Dune")
				So(created.Genre, ShouldResemble, []string{"Sci-Fi"})
				So(created.Rate, ShouldEqual, 5)

				for _, m := range before {
					So(m.ID, ShouldNotEqual, created.ID)
				}
				after := decodeMovies(ts.do(http.MethodGet, "/movies", ""))
				So(len(after), ShouldEqual, len(before)+1)
				So(after[len(after)-1].ID, ShouldEqual, created.ID)

				got := ts.do(http.MethodGet, "/movies/"+created.ID, "")
				So(got.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the movie is released this year", func() {
			body := strings.Replace(dune, "2021", strconv.Itoa(time.Now().Year()), 1)
			rec := ts.do(http.MethodPost, "/movies", body)

			Convey("Then it is accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(decodeMovie(rec).Year, ShouldEqual, time.Now().Year())
			})
		})

		Convey("When required fields are missing", func() {
			rec := ts.do(http.MethodPost, "/movies", `{"year":2021}`)

			Convey("Then every problem is listed and nothing is stored", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeIssues(rec)
				fields := make([]string, 0, len(body.Error))
				for _, is := range body.Error {
					fields = append(fields, is.Field)
					So(is.Code, ShouldEqual, "required")
				}
				So(fields, ShouldResemble, []string{"title", "director", "duration", "poster", "genre"})
				So(ts.count(), ShouldEqual, len(before))
			})
		})

		Convey("When field values are out of range", func() {
			rec := ts.do(http.MethodPost, "/movies",
				`{"title":"Old","year":1800,"director":"x","duration":90,"poster":"not a url","genre":["Musical"],"rate":11}`)

			Convey("Then the issues name the offending fields", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeIssues(rec)
				codes := map[string]string{}
				for _, is := range body.Error {
					codes[is.Field] = is.Code
				}
				So(codes["year"], ShouldEqual, "too_small")
				So(codes["poster"], ShouldEqual, "invalid_url")
				So(codes["genre.0"], ShouldEqual, "invalid_enum_value")
				So(codes["rate"], ShouldEqual, "too_big")
			})
		})

		Convey("When the body is not JSON", func() {
			rec := ts.do(http.MethodPost, "/movies", `{"title":`)

			Convey("Then a single invalid_json issue is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeIssues(rec)
				So(len(body.Error), ShouldEqual, 1)
				So(body.Error[0].Field, ShouldEqual, "")
				So(body.Error[0].Code, ShouldEqual, "invalid_json")
			})
		})

		Convey("When the body is a JSON array", func() {
			rec := ts.do(http.MethodPost, "/movies", `[]`)

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(ts.count(), ShouldEqual, len(before))
			})
		})
	})
}

func TestCreateMovie_BodyTooLarge(t *testing.T) {
	Convey("Given a server with a tiny body limit", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithSeed(seed()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		handler := api.NewServer(svc, svc, api.WithMaxBodyBytes(16)).Handler(ctx)

		Convey("When posting more than the limit", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/movies", strings.NewReader(dune)))

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(rec), ShouldEqual, "request body too large")
			})
		})
	})
}

func TestUpdateMovie(t *testing.T) {
	Convey("Given a seeded catalogue", t, func() {
		ts := newTestServer(t)

		Convey("When patching some fields", func() {
			rec := ts.do(http.MethodPatch, "/movies/m1", `{"rate":9.1,"genre":["Action"],"id":"hijack"}`)

			Convey("Then only those fields change and the id is kept", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				m := decodeMovie(rec)
				So(m.ID, ShouldEqual, "m1")
				So(m.Rate, ShouldEqual, 9.1)
				So(m.Genre, ShouldResemble, []string{"Action"})
				So(m.Title, ShouldEqual, "The Matrix")
				So(m.Year, ShouldEqual, 1999)

				stored := decodeMovie(ts.do(http.MethodGet, "/movies/m1", ""))
				So(stored.Rate, ShouldEqual, 9.1)
			})
		})

		Convey("When patching an unknown id", func() {
			before := decodeMovies(ts.do(http.MethodGet, "/movies", ""))
			rec := ts.do(http.MethodPatch, "/movies/nope", `{"title":"x"}`)

			Convey("Then it is a 404 and nothing changes", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(rec), ShouldEqual, "movie not found")
				after := decodeMovies(ts.do(http.MethodGet, "/movies", ""))
				So(after, ShouldResemble, before)
			})
		})

		Convey("When the patch body is empty", func() {
			before := decodeMovie(ts.do(http.MethodGet, "/movies/m1", ""))
			rec := ts.do(http.MethodPatch, "/movies/m1", "")

			Convey("Then the movie is returned unchanged", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decodeMovie(rec), ShouldResemble, before)
			})

			Convey("And an unknown id is still a 404", func() {
				So(ts.do(http.MethodPatch, "/movies/nope", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the patch body is truncated JSON", func() {
			rec := ts.do(http.MethodPatch, "/movies/m1", `{"title":`)

			Convey("Then it is rejected as invalid JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeIssues(rec).Error[0].Code, ShouldEqual, "invalid_json")
			})
		})

		Convey("When the patch is invalid", func() {
			rec := ts.do(http.MethodPatch, "/movies/nope", `{"year":"soon"}`)

			Convey("Then validation runs before the lookup", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeIssues(rec)
				So(body.Error[0].Field, ShouldEqual, "year")
				So(body.Error[0].Code, ShouldEqual, "invalid_type")
			})
		})
	})
}

func TestDeleteMovie(t *testing.T) {
	Convey("Given a seeded catalogue", t, func() {
		ts := newTestServer(t)

		Convey("When deleting a known id", func() {
			rec := ts.do(http.MethodDelete, "/movies/m2", "")

			Convey("Then exactly one record is removed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"message":"movie deleted"`)
				So(ts.count(), ShouldEqual, 2)
				So(ts.do(http.MethodGet, "/movies/m2", "").Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And deleting it again is a 404", func() {
				again := ts.do(http.MethodDelete, "/movies/m2", "")
				So(again.Code, ShouldEqual, http.StatusNotFound)
				So(ts.count(), ShouldEqual, 2)
			})
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given the default allow-list", t, func() {
		ts := newTestServer(t)

		Convey("When an allowed origin calls", func() {
			rec := ts.do(http.MethodGet, "/movies", "", "Origin", allowedOrigin)

			Convey("Then the origin is echoed", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, allowedOrigin)
			})
		})

		Convey("When an unknown origin calls", func() {
			rec := ts.do(http.MethodGet, "/movies", "", "Origin", rejectedOrigin)

			Convey("Then the response is served without the header", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})

		Convey("When no origin is sent", func() {
			rec := ts.do(http.MethodGet, "/movies", "")

			Convey("Then there is nothing to echo", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				_, present := rec.Header()["Access-Control-Allow-Origin"]
				So(present, ShouldBeFalse)
			})
		})

		Convey("When an allowed origin sends a preflight", func() {
			rec := ts.do(http.MethodOptions, "/movies/m1", "", "Origin", allowedOrigin)

			Convey("Then methods and headers are advertised with an empty body", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.Len(), ShouldEqual, 0)
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, allowedOrigin)
				So(rec.Header().Get("Access-Control-Allow-Methods"), ShouldEqual, "GET,POST,PUT,PATCH,DELETE")
				So(rec.Header().Get("Access-Control-Allow-Headers"), ShouldEqual, "Content-Type")
			})
		})

		Convey("When an unknown origin sends a preflight", func() {
			rec := ts.do(http.MethodOptions, "/movies/m1", "", "Origin", rejectedOrigin)

			Convey("Then nothing is granted", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
				So(rec.Header().Get("Access-Control-Allow-Methods"), ShouldBeEmpty)
			})
		})
	})
}

func TestCORS_Accepts(t *testing.T) {
	Convey("Given a custom allow-list", t, func() {
		cors := api.NewCORS([]string{"http://a.test"}, nil)

		Convey("Then only exact matches and same-origin requests are accepted", func() {
			So(cors.Accepts(""), ShouldBeTrue)
			So(cors.Accepts("http://a.test"), ShouldBeTrue)
			So(cors.Accepts("http://a.test/"), ShouldBeFalse)
			So(cors.Accepts("https://a.test"), ShouldBeFalse)
		})
	})
}

func TestAmbientRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		ts := newTestServer(t)

		Convey("When probing /healthz", func() {
			rec := ts.do(http.MethodGet, "/healthz", "")

			Convey("Then it reports ok", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When reading /stats", func() {
			rec := ts.do(http.MethodGet, "/stats", "")

			Convey("Then the service stats are returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var stats map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
				So(stats["movies"], ShouldEqual, float64(3))
			})
		})

		Convey("When scraping /metrics after some traffic", func() {
			ts.do(http.MethodGet, "/movies", "")
			rec := ts.do(http.MethodGet, "/metrics", "")

			Convey("Then the movies collectors are exposed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "movies_api_http_requests_total")
			})
		})

		Convey("When calling an unknown route", func() {
			rec := ts.do(http.MethodGet, "/nowhere", "")

			Convey("Then a JSON 404 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(rec), ShouldEqual, "resource not found")
			})
		})

		Convey("When using a verb the route does not serve", func() {
			rec := ts.do(http.MethodPut, "/movies/m1", dune)

			Convey("Then a JSON 405 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(decodeError(rec), ShouldEqual, "method not allowed")
			})
		})
	})
}

type failingDeps struct{ err error }

func (f failingDeps) List(context.Context, string) ([]model.Movie, error) { return nil, f.err }
func (f failingDeps) Get(context.Context, string) (model.Movie, error)    { return model.Movie{}, f.err }
func (f failingDeps) Create(context.Context, model.MovieInput) (model.Movie, error) {
	return model.Movie{}, f.err
}
func (f failingDeps) Update(context.Context, string, model.MoviePatch) (model.Movie, error) {
	return model.Movie{}, f.err
}
func (f failingDeps) Delete(context.Context, string) error { return f.err }

func TestErrorMapping(t *testing.T) {
	Convey("Given handlers over failing dependencies", t, func() {
		ctx := context.Background()
		serve := func(err error, method, target string) *httptest.ResponseRecorder {
			h := api.NewServer(failingDeps{err: err}, nil).Handler(ctx)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
			return rec
		}

		Convey("Then a wrapped not-found error is a 404", func() {
			rec := serve(errors.Join(errors.New("lookup"), repository.ErrNotFound), http.MethodDelete, "/movies/x")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a stopped service is a 503", func() {
			rec := serve(service.ErrNotStarted, http.MethodGet, "/movies")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Then anything else is a 500 without the cause", func() {
			rec := serve(errors.New("disk on fire"), http.MethodGet, "/movies/x")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(rec), ShouldEqual, "internal server error")
			So(rec.Body.String(), ShouldNotContainSubstring, "disk")
		})
	})
}
