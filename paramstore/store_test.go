package paramstore

import "testing"

func TestUpdateAndGet(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get(EngineSpeed); ok {
		t.Fatal("unset identity should not be valid")
	}

	s.Update(EngineSpeed, 1500, 1000, SourceJ1939)
	v, ok := s.Get(EngineSpeed)
	if !ok || v != 1500 {
		t.Fatalf("Get() = %v, %v, want 1500, true", v, ok)
	}
}

func TestUpdateIgnoresNone(t *testing.T) {
	s := NewStore()
	s.Update(None, 42, 1000, SourceJ1939)
	if _, ok := s.Get(None); ok {
		t.Fatal("None should never become valid")
	}
}

func TestInvalidateClearsFreshness(t *testing.T) {
	s := NewStore()
	s.Update(CoolantTemp, 90, 1000, SourceJ1939)
	s.Invalidate(CoolantTemp)
	if _, ok := s.Get(CoolantTemp); ok {
		t.Fatal("invalidated identity should read as not valid")
	}
}

func TestAgeAndIsFresh(t *testing.T) {
	s := NewStore()
	s.Update(OilPressure, 300, 1000, SourceJ1939)

	age, ok := s.Age(OilPressure, 1500)
	if !ok || age != 500 {
		t.Fatalf("Age() = %v, %v, want 500, true", age, ok)
	}
	if !s.IsFresh(OilPressure, 1500, 1000) {
		t.Error("should be fresh within maxAge")
	}
	if s.IsFresh(OilPressure, 3000, 1000) {
		t.Error("should not be fresh beyond maxAge")
	}
}

func TestParameterMonotonicity(t *testing.T) {
	s := NewStore()
	s.Update(TotalDistance, 100, 1000, SourceJ1939)
	s.Update(TotalDistance, 105, 2000, SourceJ1939)
	v, ts, ok := s.GetWithTime(TotalDistance)
	if !ok || v != 105 || ts != 2000 {
		t.Fatalf("GetWithTime() = %v, %v, %v", v, ts, ok)
	}
}

func TestUpdateSuppressesNotificationBelowEpsilon(t *testing.T) {
	s := NewStore()
	var fireCount int
	s.RegisterObserver(func(id Identity, value, prevValue float64, tsMs int64) {
		fireCount++
	})

	s.Update(BatteryVoltage, 13.8, 1000, SourceJ1939) // first write always notifies
	s.Update(BatteryVoltage, 13.8, 2000, SourceJ1939) // identical, no notify
	s.Update(BatteryVoltage, 13.8+changeEpsilon/2, 3000, SourceJ1939) // within epsilon, no notify

	if fireCount != 1 {
		t.Fatalf("fireCount = %d, want 1", fireCount)
	}

	s.Update(BatteryVoltage, 14.1, 4000, SourceJ1939) // real change, notifies
	if fireCount != 2 {
		t.Fatalf("fireCount = %d, want 2", fireCount)
	}
}

func TestUpdateNotifiesOnFirstReadingEvenAtZero(t *testing.T) {
	s := NewStore()
	var got []float64
	s.RegisterObserver(func(id Identity, value, prevValue float64, tsMs int64) {
		got = append(got, value)
	})

	s.Update(CurrentGear, 0, 1000, SourceJ1939)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("got = %v, want one notification with value 0", got)
	}
}

func TestObserverReceivesPreviousValue(t *testing.T) {
	s := NewStore()
	var gotPrev []float64
	s.RegisterObserver(func(id Identity, value, prevValue float64, tsMs int64) {
		gotPrev = append(gotPrev, prevValue)
	})

	s.Update(CoolantTemp, 90, 1000, SourceJ1939)
	s.Update(CoolantTemp, 95, 2000, SourceJ1939)

	if len(gotPrev) != 2 || gotPrev[0] != 0 || gotPrev[1] != 90 {
		t.Fatalf("gotPrev = %v, want [0 90]", gotPrev)
	}
}

func TestUpdateDiscardsOlderStampedValueAcrossSources(t *testing.T) {
	s := NewStore()
	s.Update(EngineSpeed, 2000, 5000, SourceJ1939)
	s.Update(EngineSpeed, 1800, 3000, SourceComputed) // older timestamp, discarded
	v, ts, ok := s.GetWithTime(EngineSpeed)
	if !ok || v != 2000 || ts != 5000 {
		t.Fatalf("GetWithTime() = %v, %v, %v, want the newer-stamped value preserved", v, ts, ok)
	}
}

func TestDetailTracksPreviousValueAndUpdateCount(t *testing.T) {
	s := NewStore()
	s.Update(FuelLevel1, 80, 1000, SourceJ1708)
	s.Update(FuelLevel1, 78, 2000, SourceJ1708)

	value, prev, ts, count, src, valid := s.Detail(FuelLevel1)
	if !valid || value != 78 || prev != 80 || ts != 2000 {
		t.Fatalf("Detail() = %v %v %v %v, want 78 80 2000 valid", value, prev, ts, valid)
	}
	if count != 2 {
		t.Errorf("updateCount = %d, want 2", count)
	}
	if src != SourceJ1708 {
		t.Errorf("source = %v, want SourceJ1708", src)
	}
}
