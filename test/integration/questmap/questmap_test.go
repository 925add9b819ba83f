// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package questmap_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/holomush/questmap/internal/config"
	"github.com/holomush/questmap/internal/geom"
	"github.com/holomush/questmap/internal/intercept"
	"github.com/holomush/questmap/internal/observability"
	"github.com/holomush/questmap/internal/pipeline"
	"github.com/holomush/questmap/internal/questmap"
	"github.com/holomush/questmap/internal/refresh"
	"github.com/holomush/questmap/internal/sim"
)

const (
	farmScenario   = "../../../internal/sim/testdata/farm.yaml"
	harborScenario = "testdata/harbor.yaml"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func defaultConfig() *config.Config {
	GinkgoT().Setenv("XDG_CONFIG_HOME", GinkgoT().TempDir())
	cfg, err := config.Load("", nil)
	Expect(err).NotTo(HaveOccurred())
	return cfg
}

func build(ref string) *pipeline.Pipeline {
	scenario, _, err := pipeline.LoadScenario(ref)
	Expect(err).NotTo(HaveOccurred())
	p, err := pipeline.New(scenario, defaultConfig(), quiet)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(p.Stop)
	return p
}

func labels(p *pipeline.Pipeline) []string {
	var out []string
	for _, m := range p.Drawn() {
		out = append(out, m.Label)
	}
	return out
}

func markerAt(p *pipeline.Pipeline, label string) geom.Vec3 {
	for _, m := range p.Drawn() {
		if m.Label == label {
			return m.Position
		}
	}
	Fail(fmt.Sprintf("no marker labelled %q", label))
	return geom.Vec3{}
}

var _ = Describe("Quest map markers", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("opening the map", func() {
		It("draws one marker per resolvable objective in the current scene", func() {
			p := build(farmScenario)
			p.Start(ctx)
			Expect(p.Drawn()).To(BeEmpty())

			Expect(p.RunScript(ctx, "open", `sim.open_map()`)).To(Succeed())

			Expect(labels(p)).To(ConsistOf(
				"Find the Key", "Ring the Bell", "Open the Gate", "Reach the Well", "Hunt the Fox"))
			Expect(p.Controller.State()).To(Equal(refresh.Active))
		})

		It("does not redraw when the map is opened twice", func() {
			p := build(farmScenario)
			p.Start(ctx)

			Expect(p.RunScript(ctx, "open", `sim.open_map() sim.open_map()`)).To(Succeed())

			Expect(p.Renderer.Created()).To(Equal(5))
		})

		It("disposes every marker when the map closes", func() {
			p := build(farmScenario)
			p.Start(ctx)

			Expect(p.RunScript(ctx, "toggle", `sim.open_map() sim.close_map()`)).To(Succeed())

			Expect(p.Drawn()).To(BeEmpty())
			Expect(p.Controller.State()).To(Equal(refresh.Inactive))
		})
	})

	Describe("spawn interception", func() {
		It("adds spawned objectives to the map on the next refresh", func() {
			p := build(farmScenario)
			p.Start(ctx)

			Expect(p.RunScript(ctx, "eggs", `
				sim.open_map()
				sim.spawn_item("egg-spawner", 2, 0, 2)
				sim.refresh()
			`)).To(Succeed())

			Expect(markerAt(p, "Collect Eggs")).To(Equal(geom.V(2, 0, 2)))
		})

		It("records a prefab spawn at the instantiated object's position", func() {
			p := build(farmScenario)
			p.Start(ctx)

			Expect(p.RunScript(ctx, "fox", `sim.spawn_prefab("fox-spawner", 60, 0, 60)`)).To(Succeed())

			Expect(p.Registry.QueryByScene("Level_Farm")).To(HaveLen(1))
			Expect(p.Registry.QueryByScene("Level_Farm")[0].Position).To(Equal(geom.V(60, 0, 60)))
			Expect(p.Patcher.InFlight()).To(BeFalse())
		})

		It("ignores an instantiate that no prefab spawn is waiting for", func() {
			p := build(farmScenario)
			p.Start(ctx)

			Expect(p.RunScript(ctx, "rock", `sim.instantiate("rock", 1, 0, 1)`)).To(Succeed())

			Expect(p.Registry.Len()).To(BeZero())
		})

		It("tracks map element visibility", func() {
			p := build(farmScenario)
			p.Start(ctx)

			Expect(p.RunScript(ctx, "henhouse", `sim.set_visibility("henhouse", true)`)).To(Succeed())
			Expect(p.Registry.VisibleCount()).To(Equal(1))

			Expect(p.RunScript(ctx, "henhouse", `sim.despawn_all("henhouse")`)).To(Succeed())
			Expect(p.Registry.VisibleCount()).To(BeZero())
		})

		It("forgets spawns once their task finishes", func() {
			p := build(farmScenario)
			p.Start(ctx)

			Expect(p.RunScript(ctx, "finish", `
				sim.open_map()
				sim.spawn_item("egg-spawner", 2, 0, 2)
				sim.finish_task("eggs")
				sim.refresh()
			`)).To(Succeed())

			Expect(labels(p)).NotTo(ContainElement("Collect Eggs"))
			Expect(p.Registry.Len()).To(BeZero())
		})
	})

	Describe("scene changes", func() {
		It("redraws from the new scene's locations and triggers", func() {
			p := build(farmScenario)
			p.Start(ctx)

			Expect(p.RunScript(ctx, "travel", `
				sim.open_map()
				sim.load_scene("Level_Town")
			`)).To(Succeed())

			Expect(labels(p)).To(ConsistOf("Find the Key", "Open the Gate", "Hunt the Fox"))
			Expect(markerAt(p, "Open the Gate")).To(Equal(geom.V(70, 0, 70)))
			Expect(p.Ready()).To(BeTrue())
		})
	})

	Describe("disable", func() {
		It("restores the host's original behavior", func() {
			p := build(farmScenario)
			p.Start(ctx)
			p.Stop()

			Expect(p.RunScript(ctx, "after", `
				sim.open_map()
				sim.spawn_item("egg-spawner", 2, 0, 2)
			`)).To(Succeed())

			Expect(p.Drawn()).To(BeEmpty())
			Expect(p.Registry.Len()).To(BeZero())
			Expect(p.Controller.Enabled()).To(BeFalse())
		})
	})

	Describe("scenario scripts", func() {
		It("runs the inline script against an already open map", func() {
			scenario, _, err := pipeline.LoadScenario(harborScenario)
			Expect(err).NotTo(HaveOccurred())
			p, err := pipeline.New(scenario, defaultConfig(), quiet)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(p.Stop)
			p.Start(ctx)
			Expect(labels(p)).To(ConsistOf("Mend the Nets"))

			Expect(p.RunScript(ctx, "harbor", scenario.Script)).To(Succeed())

			Expect(labels(p)).To(ConsistOf("Mend the Nets", "Catch Crabs"))
			Expect(markerAt(p, "Catch Crabs")).To(Equal(geom.V(-6, 0, 2)))
		})
	})

	Describe("event loop", func() {
		It("applies host events delivered on a channel", func() {
			p := build(farmScenario)
			p.World.SetListener(nil)
			p.Start(ctx)

			runCtx, cancel := context.WithCancel(ctx)
			events := make(chan refresh.Event)
			done := make(chan error, 1)
			go func() { done <- p.Controller.Run(runCtx, events) }()

			p.World.OpenMap(ctx)
			events <- refresh.EventViewChanged
			Eventually(func() int { return len(p.Drawn()) }).Should(Equal(5))

			cancel()
			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})
	})

	Describe("observability", func() {
		It("serves engine metrics and readiness", func() {
			p := build(farmScenario)
			srv := observability.NewServer("127.0.0.1:0", p.Ready, intercept.RegisterMetrics, questmap.RegisterMetrics)
			_, err := srv.Start()
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(func() {
				http.DefaultClient.CloseIdleConnections()
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				Expect(srv.Stop(stopCtx)).To(Succeed())
			})

			p.Start(ctx)
			before := testutil.ToFloat64(questmap.Refreshes.WithLabelValues(questmap.StatusSuccess))
			Expect(p.RunScript(ctx, "open", `sim.open_map()`)).To(Succeed())
			Expect(testutil.ToFloat64(questmap.Refreshes.WithLabelValues(questmap.StatusSuccess))).To(Equal(before + 1))
			Expect(testutil.ToFloat64(questmap.PublishedMarkers)).To(Equal(5.0))

			resp, err := http.Get("http://" + srv.Addr() + "/healthz/readiness")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Body.Close()).To(Succeed())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			resp, err = http.Get("http://" + srv.Addr() + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Body.Close()).To(Succeed())
			Expect(string(body)).To(ContainSubstring("questmap_refreshes_total"))
		})
	})
})

var _ = Describe("Scenario files", func() {
	It("accepts both bundled scenarios", func() {
		for _, ref := range []string{farmScenario, harborScenario} {
			_, _, err := pipeline.LoadScenario(ref)
			Expect(err).NotTo(HaveOccurred(), ref)
		}
	})

	It("produces a schema the loader agrees with", func() {
		data, err := sim.GenerateSchema()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(sim.SchemaID))
	})
})
