package storage_test

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sysid/internal/experiment"
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/storage"
	"github.com/san-kum/sysid/internal/sweep"
)

func sampleResult() *sweep.Result {
	return &sweep.Result{
		Name:    "noise",
		Elapsed: 1500 * time.Millisecond,
		Points: []sweep.Point{
			{Param: 0.01, Status: ident.Converged, Outcome: &experiment.Outcome{
				Metrics: map[string]float64{"improvement": 6.5, "rms_after": 0.002},
			}},
			{Param: 0.1, Status: ident.NotConverged, Outcome: &experiment.Outcome{
				Metrics: map[string]float64{"improvement": 2.25},
			}},
		},
	}
}

var _ = Describe("Store", func() {
	var st *storage.Store

	BeforeEach(func() {
		st = storage.New(filepath.Join(GinkgoT().TempDir(), "runs"))
		Expect(st.Init()).To(Succeed())
	})

	It("saves and loads a sweep", func() {
		id, err := st.SaveSweep(storage.RunMetadata{Name: "noise", Param: "noise", Scenario: "tones", Seed: 42}, sampleResult())
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(HavePrefix("noise_"))

		meta, err := st.Load(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.Seed).To(Equal(int64(42)))
		Expect(meta.Points).To(Equal(2))
		Expect(meta.Elapsed).To(BeNumerically("~", 1.5, 1e-9))
		Expect(meta.Statuses).To(Equal(map[string]int{"converged": 1, "not_converged": 1}))

		points, err := st.LoadPoints(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(2))
		Expect(points[0].Metrics).To(Equal(map[string]float64{"improvement": 6.5, "rms_after": 0.002}))
		Expect(points[1].Status).To(Equal("not_converged"))
		Expect(points[1].Metrics).NotTo(HaveKey("rms_after"))
	})

	It("lists runs oldest first", func() {
		first, err := st.SaveSweep(storage.RunMetadata{Name: "a"}, sampleResult())
		Expect(err).NotTo(HaveOccurred())
		second, err := st.SaveSweep(storage.RunMetadata{Name: "b"}, sampleResult())
		Expect(err).NotTo(HaveOccurred())

		runs, err := st.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(2))
		Expect(runs[0].ID).To(Equal(first))
		Expect(runs[1].ID).To(Equal(second))
	})

	It("lists nothing for a missing directory", func() {
		runs, err := storage.New(filepath.Join(GinkgoT().TempDir(), "none")).List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(BeEmpty())
	})

	It("exports a run as JSON", func() {
		id, err := st.SaveSweep(storage.RunMetadata{Name: "noise"}, sampleResult())
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(st.ExportJSON(&buf, id)).To(Succeed())

		var data storage.ExportData
		Expect(json.Unmarshal(buf.Bytes(), &data)).To(Succeed())
		Expect(data.Run.ID).To(Equal(id))
		Expect(data.Points).To(HaveLen(2))
	})

	It("exports non-finite metrics as strings", func() {
		res := sampleResult()
		res.Points[0].Outcome.Metrics["improvement"] = math.Inf(1)
		res.Points[1].Outcome.Metrics["improvement"] = math.NaN()
		id, err := st.SaveSweep(storage.RunMetadata{Name: "noise"}, res)
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(st.ExportJSON(&buf, id)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`"improvement": "+Inf"`))

		var data storage.ExportData
		Expect(json.Unmarshal(buf.Bytes(), &data)).To(Succeed())
		Expect(math.IsInf(float64(data.Points[0].Metrics["improvement"]), 1)).To(BeTrue())
		Expect(math.IsNaN(float64(data.Points[1].Metrics["improvement"]))).To(BeTrue())
		Expect(float64(data.Points[0].Metrics["rms_after"])).To(Equal(0.002))
	})
})

var _ = Describe("Series CSV", func() {
	It("round trips columns", func() {
		path := filepath.Join(GinkgoT().TempDir(), "data.csv")
		u := []float64{1, 2, 3}
		y := []float64{0.5, -0.25, 1e-9}
		Expect(storage.WriteSeriesCSV(path, []string{"u", "y"}, u, y)).To(Succeed())

		header, cols, err := storage.ReadSeriesCSV(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(header).To(Equal([]string{"u", "y"}))

		got, err := storage.Column(header, cols, "y")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(y))

		_, err = storage.Column(header, cols, "z")
		Expect(err).To(HaveOccurred())
	})

	It("rejects ragged columns", func() {
		path := filepath.Join(GinkgoT().TempDir(), "data.csv")
		err := storage.WriteSeriesCSV(path, []string{"u", "y"}, []float64{1}, []float64{1, 2})
		Expect(err).To(MatchError(ident.ErrInvalidDimension))
	})

	It("reports the line of a malformed value", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bad.csv")
		Expect(os.WriteFile(path, []byte("y\n1\nabc\n"), 0644)).To(Succeed())

		_, _, err := storage.ReadSeriesCSV(path)
		Expect(err).To(MatchError(ContainSubstring(":3: column y")))
	})
})
