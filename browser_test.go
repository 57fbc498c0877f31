package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

// eventually polls cond until it holds or a second has passed.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func dialWindow(ts *httptest.Server) (*websocket.Conn, string, error) {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, "", err
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return nil, "", err
	}
	return conn, hello.Label, nil
}

// readUntil reads messages until one of type typ arrives.
func readUntil(conn *websocket.Conn, typ string) (Message, error) {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return Message{}, err
		}
		if msg.Type == typ {
			return msg, nil
		}
	}
}

func newBrowserTestServer() (*BrowserHost, *Shell, *httptest.Server, error) {
	host := NewBrowserHost()
	shell := newTestShell(host, "/home/u/project")
	mux, err := newMux(shell, host)
	if err != nil {
		return nil, nil, nil, err
	}
	ts := httptest.NewServer(mux)
	host.SetBaseURL(ts.URL)
	return host, shell, ts, nil
}

func TestBrowserHostWindows(t *testing.T) {
	Convey("Given a browser host with one connected tab", t, func() {
		host, shell, ts, err := newBrowserTestServer()
		So(err, ShouldBeNil)
		defer ts.Close()

		conn, label, err := dialWindow(ts)
		So(err, ShouldBeNil)
		defer conn.Close()

		Convey("The tab is registered under a window label", func() {
			So(label, ShouldStartWith, "window-")
			windows := host.Windows()
			So(len(windows), ShouldEqual, 1)
			So(windows[0].Label, ShouldEqual, label)
		})

		Convey("State reports update focus and visibility", func() {
			So(conn.WriteJSON(Message{Type: msgState, Focused: true, Visible: true}), ShouldBeNil)
			So(eventually(func() bool {
				w := host.Windows()
				return len(w) == 1 && w[0].Focused && w[0].Visible
			}), ShouldBeTrue)
		})

		Convey("Only one tab is focused at a time", func() {
			conn2, label2, err := dialWindow(ts)
			So(err, ShouldBeNil)
			defer conn2.Close()

			focusedLabels := func() []string {
				var out []string
				for _, w := range host.Windows() {
					if w.Focused {
						out = append(out, w.Label)
					}
				}
				return out
			}

			// Rule 3 would pick the first tab before any report lands, so
			// wait on the focus flag itself.
			So(conn.WriteJSON(Message{Type: msgState, Focused: true, Visible: true}), ShouldBeNil)
			So(eventually(func() bool {
				w, _ := SelectWindow(host.Windows())
				return w.Focused && w.Label == label
			}), ShouldBeTrue)

			So(conn2.WriteJSON(Message{Type: msgState, Focused: true, Visible: true}), ShouldBeNil)
			So(eventually(func() bool {
				w, _ := SelectWindow(host.Windows())
				return w.Focused && w.Label == label2
			}), ShouldBeTrue)
			So(focusedLabels(), ShouldResemble, []string{label2})
		})

		Convey("A targeted notification reaches the tab", func() {
			So(host.Emit(FileOpen("/abs/doc.md", label)), ShouldBeNil)

			msg, err := readUntil(conn, msgEvent)
			So(err, ShouldBeNil)
			So(msg.Event, ShouldEqual, EventFileOpen)
			So(msg.Path, ShouldEqual, "/abs/doc.md")
		})

		Convey("A broadcast reaches the tab", func() {
			So(host.Emit(FileOpen("/abs/all.md", "")), ShouldBeNil)

			msg, err := readUntil(conn, msgEvent)
			So(err, ShouldBeNil)
			So(msg.Path, ShouldEqual, "/abs/all.md")
		})

		Convey("Operations on an unknown label report a closed window", func() {
			So(errors.Is(host.Emit(FileOpen("/x.md", "window-gone")), ErrWindowClosed), ShouldBeTrue)
			So(errors.Is(host.Show("window-gone"), ErrWindowClosed), ShouldBeTrue)
			So(errors.Is(host.Focus("window-gone"), ErrWindowClosed), ShouldBeTrue)
		})

		Convey("Showing the tab delivers the pending path", func() {
			shell.Pending().Set("/home/u/project/notes.md")

			resp, err := http.Post(ts.URL+"/api/windows/"+label+"/show", "", nil)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

			msg, err := readUntil(conn, msgEvent)
			So(err, ShouldBeNil)
			So(msg.Path, ShouldEqual, "/home/u/project/notes.md")
			So(shell.GetCliArgs(), ShouldBeFalse)
			So(host.Windows()[0].Visible, ShouldBeTrue)
		})

		Convey("A second instance without a file opens another tab", func() {
			var opened []string
			host.openURL = func(url string) error {
				opened = append(opened, url)
				return nil
			}
			shell.HandleSecondInstance([]string{"app"}, "")
			So(opened, ShouldResemble, []string{ts.URL})
		})

		Convey("Closing the tab removes the window", func() {
			conn.Close()
			So(eventually(func() bool { return len(host.Windows()) == 0 }), ShouldBeTrue)
		})
	})
}

func TestBrowserHostRegister(t *testing.T) {
	Convey("Given a tab that has just registered", t, func() {
		host := NewBrowserHost()
		win := host.register()

		Convey("Its hello is already queued", func() {
			So(len(win.send), ShouldEqual, 1)
			msg := <-win.send
			So(msg.Type, ShouldEqual, msgHello)
			So(msg.Label, ShouldEqual, win.label)
		})

		Convey("Broadcasts before the writer starts never block", func() {
			done := make(chan struct{})
			go func() {
				for i := 0; i < 2*cap(win.send); i++ {
					host.Emit(FileOpen("/abs/doc.md", ""))
				}
				close(done)
			}()
			finished := false
			select {
			case <-done:
				finished = true
			case <-time.After(time.Second):
			}
			So(finished, ShouldBeTrue)
			So((<-win.send).Type, ShouldEqual, msgHello)
		})

		Convey("It is reported as a window", func() {
			So(host.MultiWindow(), ShouldBeTrue)
			So(host.Windows(), ShouldResemble, []WindowInfo{{Label: win.label}})
		})
	})
}

func TestBrowserHostCreateWindow(t *testing.T) {
	Convey("Given a browser host", t, func() {
		host := NewBrowserHost()
		var opened []string
		host.openURL = func(url string) error {
			opened = append(opened, url)
			return nil
		}

		Convey("Creating a window before the server starts fails", func() {
			So(host.CreateWindow(), ShouldNotBeNil)
			So(opened, ShouldBeEmpty)
		})

		Convey("Creating a window opens the editor URL", func() {
			host.SetBaseURL("http://127.0.0.1:4567")
			So(host.CreateWindow(), ShouldBeNil)
			So(opened, ShouldResemble, []string{"http://127.0.0.1:4567"})
		})

		Convey("Browser failures are wrapped", func() {
			host.SetBaseURL("http://127.0.0.1:4567")
			host.openURL = func(string) error { return errors.New("no browser") }
			So(host.CreateWindow().Error(), ShouldContainSubstring, "open browser")
		})
	})
}
