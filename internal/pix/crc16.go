package pix

import "fmt"

const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF

	// crcFieldPrefix is the id and length of field 63, included in the checksummed data.
	crcFieldPrefix = "6304"
)

// CRC16 computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF, no reflection,
// no final XOR) over the bytes of data and returns it as 4 uppercase hex digits.
func CRC16(data string) string {
	return fmt.Sprintf("%04X", crc16(data))
}

func crc16(data string) uint16 {
	crc := uint16(crcInitial)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
