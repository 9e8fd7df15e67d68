package opt4048

// EncodeConfigA packs cfg into the raw value of register 0x0A. Bits not owned
// by a field keep their reset value. Values built from the package constants
// always encode; an error is only possible for out-of-set values produced by
// a numeric conversion.
func EncodeConfigA(cfg ConfigA) (uint16, error) {
	raw := RegConfigA.Reset
	steps := []struct {
		f    field
		name string
		code func() (uint32, error)
	}{
		{cfgAQuickWake, "qwake", func() (uint32, error) { return quickWakeTable.encode(cfg.QuickWake) }},
		{cfgARange, "range", func() (uint32, error) { return cfg.Range.code(), nil }},
		{cfgAConvTime, "conv_time", func() (uint32, error) { return conversionTimeTable.encode(cfg.ConversionTime) }},
		{cfgAMode, "operating_mode", func() (uint32, error) { return operatingModeTable.encode(cfg.OperatingMode) }},
		{cfgALatch, "latch", func() (uint32, error) { return latchTable.encode(cfg.Latch) }},
		{cfgAIntPol, "int_pol", func() (uint32, error) { return intPolarityTable.encode(cfg.IntPolarity) }},
		{cfgAFaultCount, "fault_count", func() (uint32, error) { return faultCountTable.encode(cfg.FaultCount) }},
	}
	for _, s := range steps {
		code, err := s.code()
		if err != nil {
			return 0, err
		}
		raw, err = s.f.set(raw, code, s.name)
		if err != nil {
			return 0, err
		}
	}
	return uint16(raw), nil
}

// DecodeConfigA unpacks register 0x0A. The first field holding a code with
// no valid value aborts decoding with a *ConversionError.
func DecodeConfigA(raw uint16) (ConfigA, error) {
	v := uint32(raw)
	var cfg ConfigA
	var err error
	if cfg.QuickWake, err = quickWakeTable.decode(cfgAQuickWake.get(v)); err != nil {
		return ConfigA{}, err
	}
	if cfg.Range, err = rangeFromCode(cfgARange.get(v)); err != nil {
		return ConfigA{}, err
	}
	if cfg.ConversionTime, err = conversionTimeTable.decode(cfgAConvTime.get(v)); err != nil {
		return ConfigA{}, err
	}
	if cfg.OperatingMode, err = operatingModeTable.decode(cfgAMode.get(v)); err != nil {
		return ConfigA{}, err
	}
	if cfg.Latch, err = latchTable.decode(cfgALatch.get(v)); err != nil {
		return ConfigA{}, err
	}
	if cfg.IntPolarity, err = intPolarityTable.decode(cfgAIntPol.get(v)); err != nil {
		return ConfigA{}, err
	}
	if cfg.FaultCount, err = faultCountTable.decode(cfgAFaultCount.get(v)); err != nil {
		return ConfigA{}, err
	}
	return cfg, nil
}

// EncodeConfigB packs cfg into the raw value of register 0x0B. IntConfig is
// passed through unvalidated apart from its 2-bit width.
func EncodeConfigB(cfg ConfigB) (uint16, error) {
	raw := RegConfigB.Reset
	ch, err := channelTable.encode(cfg.ThresholdChannel)
	if err != nil {
		return 0, err
	}
	if raw, err = cfgBChannel.set(raw, ch, "threshold_ch"); err != nil {
		return 0, err
	}
	dir, err := intDirectionTable.encode(cfg.IntDirection)
	if err != nil {
		return 0, err
	}
	if raw, err = cfgBIntDir.set(raw, dir, "int_dir"); err != nil {
		return 0, err
	}
	if raw, err = cfgBIntCfg.set(raw, uint32(cfg.IntConfig), "int_cfg"); err != nil {
		return 0, err
	}
	burst, err := burstReadTable.encode(cfg.BurstRead)
	if err != nil {
		return 0, err
	}
	if raw, err = cfgBBurstRead.set(raw, burst, "burst_read"); err != nil {
		return 0, err
	}
	return uint16(raw), nil
}

func DecodeConfigB(raw uint16) (ConfigB, error) {
	v := uint32(raw)
	var cfg ConfigB
	var err error
	if cfg.ThresholdChannel, err = channelTable.decode(cfgBChannel.get(v)); err != nil {
		return ConfigB{}, err
	}
	if cfg.IntDirection, err = intDirectionTable.decode(cfgBIntDir.get(v)); err != nil {
		return ConfigB{}, err
	}
	cfg.IntConfig = uint8(cfgBIntCfg.get(v))
	if cfg.BurstRead, err = burstReadTable.decode(cfgBBurstRead.get(v)); err != nil {
		return ConfigB{}, err
	}
	return cfg, nil
}

func DecodeStatus(raw uint16) Status {
	v := uint32(raw)
	return Status{
		Overload:  statusOverload.bit(v),
		ConvReady: statusConvReady.bit(v),
		FlagHigh:  statusFlagHigh.bit(v),
		FlagLow:   statusFlagLow.bit(v),
	}
}

func DecodeDeviceID(raw uint16) DeviceID {
	v := uint32(raw)
	return DeviceID{
		Low:  uint8(deviceIDLow.get(v)),
		High: uint16(deviceIDHigh.get(v)),
	}
}

// EncodeThreshold packs t over the reset value of reg (RegThresholdLow or
// RegThresholdHigh).
func EncodeThreshold(reg Register, t Threshold) (uint16, error) {
	raw, err := thresholdExponent.set(reg.Reset, uint32(t.Exponent), "threshold_exponent")
	if err != nil {
		return 0, err
	}
	raw, err = thresholdResult.set(raw, uint32(t.Result), "threshold_result")
	if err != nil {
		return 0, err
	}
	return uint16(raw), nil
}

func DecodeThreshold(raw uint16) Threshold {
	v := uint32(raw)
	return Threshold{
		Exponent: uint8(thresholdExponent.get(v)),
		Result:   uint8(thresholdResult.get(v)),
	}
}

// DecodeMeasurement splits the fused 32-bit measurement register.
func DecodeMeasurement(raw uint32) Sample {
	return Sample{
		Exponent: uint8(measExponent.get(raw)),
		Mantissa: measMantissa.get(raw),
		Counter:  uint8(measCounter.get(raw)),
		CRC:      uint8(measCRC.get(raw)),
	}
}

// DecodeMeasurementSplit joins the high and low 16-bit measurement registers
// of one channel. The result equals DecodeMeasurement of the same bits read
// as one 32-bit word.
func DecodeMeasurementSplit(high, low uint16) Sample {
	h, l := uint32(high), uint32(low)
	return Sample{
		Exponent: uint8(measHighExponent.get(h)),
		Mantissa: measHighMantissa.get(h)<<8 | measLowMantissa.get(l),
		Counter:  uint8(measLowCounter.get(l)),
		CRC:      uint8(measLowCRC.get(l)),
	}
}

// Verify checks the sample CRC and returns the physical reading. ch is only
// used to label a *CRCError.
func (s Sample) Verify(ch Channel) (Reading, error) {
	computed := checkCRC(s.Exponent, s.Mantissa, s.Counter)
	if computed != s.CRC {
		return Reading{}, &CRCError{Channel: ch, Read: s.CRC, Computed: computed}
	}
	return Reading{
		Value:   uint64(s.Mantissa) << s.Exponent,
		Counter: s.Counter,
	}, nil
}

// EncodeMeasurement packs a sample into the fused 32-bit register form with a
// freshly computed check value; s.CRC is ignored.
func EncodeMeasurement(s Sample) (uint32, error) {
	var raw uint32
	steps := []struct {
		f    field
		v    uint32
		name string
	}{
		{measExponent, uint32(s.Exponent), "exponent"},
		{measMantissa, s.Mantissa, "mantissa"},
		{measCounter, uint32(s.Counter), "counter"},
		{measCRC, uint32(checkCRC(s.Exponent, s.Mantissa, s.Counter)), "crc"},
	}
	for _, st := range steps {
		var err error
		if raw, err = st.f.set(raw, st.v, st.name); err != nil {
			return 0, err
		}
	}
	return raw, nil
}
