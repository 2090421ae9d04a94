package program

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformer/internal/scenario"
)

func testDescription() *scenario.Description {
	return &scenario.Description{
		Host: "https://shop.example.com",
		Scenarios: []*scenario.Scenario{
			{
				Name:   "checkout flow",
				Weight: 2,
				Tasks: []scenario.Task{
					{Name: "home", Method: "GET", URL: "/"},
				},
				Children: []*scenario.Scenario{
					{
						Name: "payment",
						Tasks: []scenario.Task{
							{
								Name:      "Pay now!",
								Method:    "POST",
								URL:       "/pay",
								Headers:   map[string]string{"X-B": "2", "X-A": "1"},
								Body:      `{"amount": 10}`,
								ThinkTime: 1500 * time.Millisecond,
							},
							{Name: "home", Method: "GET", URL: "/done"},
						},
					},
				},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	p := Build(testDescription())

	assert.Equal(t, defaultImports, p.Imports)
	assert.Empty(t, p.Globals)
	require.Len(t, p.Users, 1)

	u := p.Users[0]
	assert.Equal(t, "CheckoutFlow", u.Name)
	assert.Equal(t, 2, u.Weight)
	assert.Equal(t, "https://shop.example.com", u.Host)

	require.Len(t, u.Tasks, 3)
	assert.Equal(t, "home", u.Tasks[0].Name)
	assert.Equal(t, "pay_now", u.Tasks[1].Name)
	assert.Equal(t, "home_2", u.Tasks[2].Name)

	assert.Equal(t, []string{
		`self.client.request("POST", "/pay", headers={"X-A": "1", "X-B": "2"}, data="{\"amount\": 10}")`,
		`time.sleep(1.5)`,
	}, u.Tasks[1].Body)
}

func TestBuild_DoesNotShareImports(t *testing.T) {
	p := Build(testDescription())
	p.Imports[0] = "changed"

	assert.Equal(t, "from locust import HttpUser, task", defaultImports[0])
}

func TestAddImport(t *testing.T) {
	p := &Program{}

	p.AddImport("import os")
	p.AddImport("import os")
	p.AddImport("import sys")

	assert.Equal(t, []string{"import os", "import sys"}, p.Imports)
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		in    string
		camel bool
		want  string
	}{
		{"checkout flow", true, "CheckoutFlow"},
		{"checkout flow", false, "checkout_flow"},
		{"Add To-Cart", false, "add_to_cart"},
		{"3 steps", false, "_3_steps"},
		{"élan vital", true, "ÉlanVital"},
		{"!!!", false, ""},
		{"pass", false, "pass_"},
		{"Return", false, "return_"},
		{"none", true, "None_"},
		{"True", true, "True_"},
		{"password", false, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, identifier(tt.in, tt.camel))
		})
	}
}

func TestNamer_Fallback(t *testing.T) {
	n := newNamer()

	assert.Equal(t, "request", n.method("???"))
	assert.Equal(t, "request_2", n.method(""))
	assert.Equal(t, "User", n.class(""))
}

func TestNamer_SuffixedNamesStayUnique(t *testing.T) {
	n := newNamer()

	var got []string
	for _, name := range []string{"a 2", "a", "a", "a", "pass", "pass"} {
		got = append(got, n.method(name))
	}

	assert.Equal(t, []string{"a_2", "a", "a_3", "a_4", "pass_", "pass__2"}, got)
}

func TestNamer_TemplateNames(t *testing.T) {
	n := newNamer()

	assert.Equal(t, "task_", n.method("task"))
	assert.Equal(t, "task__2", n.method("Task"))
	assert.Equal(t, "HttpUser_", n.class("http user"))
}

func TestBuild_KeywordNames(t *testing.T) {
	d := &scenario.Description{Scenarios: []*scenario.Scenario{{
		Name: "None",
		Tasks: []scenario.Task{
			{Name: "a 2", Method: "GET", URL: "/1"},
			{Name: "a", Method: "GET", URL: "/2"},
			{Name: "a", Method: "GET", URL: "/3"},
			{Name: "pass", Method: "GET", URL: "/4"},
		},
	}}}

	p := Build(d)
	require.Len(t, p.Users, 1)
	assert.Equal(t, "None_", p.Users[0].Name)

	var names []string
	for _, task := range p.Users[0].Tasks {
		names = append(names, task.Name)
	}

	assert.Equal(t, []string{"a_2", "a", "a_3", "pass_"}, names)
}

func TestRender(t *testing.T) {
	p := Build(testDescription())
	p.Globals = []string{"TOKEN = 'abc'"}

	src, err := Render(p)
	require.NoError(t, err)

	want := `# Generated by transformer. DO NOT EDIT.

from locust import HttpUser, task
import time

TOKEN = 'abc'


class CheckoutFlow(HttpUser):
    host = "https://shop.example.com"
    weight = 2

    @task
    def home(self):
        self.client.request("GET", "/")

    @task
    def pay_now(self):
        self.client.request("POST", "/pay", headers={"X-A": "1", "X-B": "2"}, data="{\"amount\": 10}")
        time.sleep(1.5)

    @task
    def home_2(self):
        self.client.request("GET", "/done")
`

	assert.Equal(t, want, string(src))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "locustfile.py")

	require.NoError(t, WriteFile(Build(testDescription()), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "class CheckoutFlow(HttpUser):")
}
