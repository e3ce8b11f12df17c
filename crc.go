package main

// CRC parameters for the SHTC1/SHTW1 sensor family, from the datasheet:
// polynomial x^8 + x^5 + x^4 + 1, initialization 0xFF, no final XOR.
const (
	crcPolynomial = 0x131
	crcSeed       = 0xFF
)

// crc8 computes the sensor CRC-8 over data.
func crc8(data []byte) byte {
	crc := uint16(crcSeed)
	for _, b := range data {
		crc ^= uint16(b)
		for bit := 8; bit > 0; bit-- {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
		crc &= 0xFF
	}
	return byte(crc)
}

// verifyChecksum reports whether received matches the CRC-8 of data.
func verifyChecksum(data []byte, received byte) bool {
	return crc8(data) == received
}
