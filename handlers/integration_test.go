// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/padron-digital/testigo/models"
	"github.com/padron-digital/testigo/testutil"
)

// TestFullSamplingWorkflow tests the complete end-to-end workflow:
// 1. Register operator
// 2. Create mesa
// 3. Load the padrón
// 4. Mark votes and run sampling cycles
// 5. Verify aggregate statistics
// 6. Invalidate one sample and verify the recompute
func TestFullSamplingWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	operatorHandler := NewOperatorHandler(db, cfg)
	mesaHandler := NewMesaHandler(db, cfg)
	voterHandler := NewVoterHandler(db, cfg)
	sampleHandler := NewSampleHandler(db, cfg)
	statsHandler := NewStatsHandler(db, cfg)

	// Step 1: Register an operator
	req := testutil.MakeRequest("POST", "/operators/register",
		models.RegisterOperatorRequest{Name: "IntegrationTester"}, nil)
	w := httptest.NewRecorder()
	operatorHandler.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Register operator failed: %d - %s", w.Code, w.Body.String())
	}

	var regResp models.RegisterOperatorResponse
	json.NewDecoder(w.Body).Decode(&regResp)
	headers := testutil.OperatorHeaders(regResp.OperatorID, regResp.OperatorKey)
	t.Logf("Step 1 - Registered operator: %s", regResp.OperatorID)

	// Step 2: Create a mesa
	req = testutil.MakeRequest("POST", "/mesas",
		models.CreateMesaRequest{Number: 42, School: "Escuela N° 12"}, headers)
	w = httptest.NewRecorder()
	mesaHandler.CreateMesa(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Create mesa failed: %d - %s", w.Code, w.Body.String())
	}

	var mesaResp models.CreateMesaResponse
	json.NewDecoder(w.Body).Decode(&mesaResp)
	mesaID := mesaResp.MesaID
	t.Logf("Step 2 - Created mesa: %s", mesaID)

	// Step 3: Load 20 voters into the padrón
	voterIDs := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		req := testutil.MakeRequest("POST", "/mesas/"+mesaID+"/voters",
			models.AddVoterRequest{
				Document: "3011" + string(rune('0'+i/10)) + string(rune('0'+i%10)) + "22",
				FullName: "Votante de Prueba",
			}, headers)
		req.SetPathValue("mesa", mesaID)
		w := httptest.NewRecorder()
		voterHandler.AddVoter(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Step 3 - Add voter %d failed: %d - %s", i, w.Code, w.Body.String())
		}

		var voterResp models.AddVoterResponse
		json.NewDecoder(w.Body).Decode(&voterResp)
		voterIDs = append(voterIDs, voterResp.VoterID)
	}
	t.Logf("Step 3 - Loaded %d voters", len(voterIDs))

	// Step 4: Ten sampling cycles. Each cycle marks 2 votes while the
	// sample is open and consumes 2 ballots, a perfect 1:1 ratio.
	pile := 100
	next := 0
	for cycle := 0; cycle < 10; cycle++ {
		req := testutil.MakeRequest("POST", "/mesas/"+mesaID+"/samples",
			models.StartSampleRequest{PileAtStart: pile}, headers)
		req.SetPathValue("mesa", mesaID)
		w := httptest.NewRecorder()
		sampleHandler.StartSample(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Step 4 - Start sample %d failed: %d - %s", cycle, w.Code, w.Body.String())
		}

		for i := 0; i < 2; i++ {
			req := testutil.MakeRequest("POST", "/voters/"+voterIDs[next]+"/vote", nil, headers)
			req.SetPathValue("id", voterIDs[next])
			w := httptest.NewRecorder()
			voterHandler.MarkVote(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Step 4 - Mark vote failed: %d - %s", w.Code, w.Body.String())
			}
			next++
		}

		pile -= 2
		req = testutil.MakeRequest("POST", "/mesas/"+mesaID+"/samples/finalize",
			models.FinalizeSampleRequest{PileAtEnd: pile}, headers)
		req.SetPathValue("mesa", mesaID)
		w = httptest.NewRecorder()
		sampleHandler.FinalizeSample(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Step 4 - Finalize sample %d failed: %d - %s", cycle, w.Code, w.Body.String())
		}

		var finResp models.FinalizeSampleResponse
		json.NewDecoder(w.Body).Decode(&finResp)
		if finResp.EfficiencyPercentage != 100.0 {
			t.Fatalf("Step 4 - Expected efficiency 100.0 on cycle %d, got %v", cycle, finResp.EfficiencyPercentage)
		}
		if finResp.Classification.Tier != models.TierExcellent {
			t.Fatalf("Step 4 - Expected tier 'excellent' on cycle %d, got '%s'", cycle, finResp.Classification.Tier)
		}
	}
	t.Log("Step 4 - Completed 10 sampling cycles")

	// Step 5: Aggregate statistics
	req = testutil.MakeRequest("GET", "/mesas/"+mesaID+"/stats", nil, nil)
	req.SetPathValue("mesa", mesaID)
	w = httptest.NewRecorder()
	statsHandler.GetMesaStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Stats failed: %d - %s", w.Code, w.Body.String())
	}

	var statsResp models.MesaStatsResponse
	json.NewDecoder(w.Body).Decode(&statsResp)

	if statsResp.Stats.ValidSampleCount != 10 {
		t.Errorf("Step 5 - Expected 10 valid samples, got %d", statsResp.Stats.ValidSampleCount)
	}
	if statsResp.Stats.AveragePercentage != 100.0 {
		t.Errorf("Step 5 - Expected average 100.0, got %v", statsResp.Stats.AveragePercentage)
	}
	if statsResp.Stats.ConfidenceTier != models.ConfidenceHigh {
		t.Errorf("Step 5 - Expected high confidence, got '%s'", statsResp.Stats.ConfidenceTier)
	}
	if statsResp.Stats.ParticipationEstimate != 100 {
		t.Errorf("Step 5 - Expected participation estimate 100, got %d", statsResp.Stats.ParticipationEstimate)
	}
	t.Logf("Step 5 - Stats: avg=%.1f confidence=%s", statsResp.Stats.AveragePercentage, statsResp.Stats.ConfidenceTier)

	// Step 6: Invalidate one sample; confidence drops to medium (9 valid)
	req = testutil.MakeRequest("GET", "/mesas/"+mesaID+"/samples", nil, nil)
	req.SetPathValue("mesa", mesaID)
	w = httptest.NewRecorder()
	sampleHandler.ListSamples(w, req)

	var samples []models.Sample
	json.NewDecoder(w.Body).Decode(&samples)
	if len(samples) != 10 {
		t.Fatalf("Step 6 - Expected 10 samples, got %d", len(samples))
	}

	isValid := false
	req = testutil.MakeRequest("PATCH", "/samples/"+samples[0].ID+"/validity",
		models.ToggleValidityRequest{IsValid: &isValid}, headers)
	req.SetPathValue("id", samples[0].ID)
	w = httptest.NewRecorder()
	sampleHandler.ToggleValidity(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Toggle validity failed: %d - %s", w.Code, w.Body.String())
	}

	req = testutil.MakeRequest("GET", "/mesas/"+mesaID+"/stats", nil, nil)
	req.SetPathValue("mesa", mesaID)
	w = httptest.NewRecorder()
	statsHandler.GetMesaStats(w, req)

	json.NewDecoder(w.Body).Decode(&statsResp)
	if statsResp.Stats.ValidSampleCount != 9 {
		t.Errorf("Step 6 - Expected 9 valid samples, got %d", statsResp.Stats.ValidSampleCount)
	}
	if statsResp.Stats.ConfidenceTier != models.ConfidenceMedium {
		t.Errorf("Step 6 - Expected medium confidence, got '%s'", statsResp.Stats.ConfidenceTier)
	}
	t.Log("Step 6 - Stats recomputed after invalidation")
}
