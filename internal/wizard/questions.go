// Package wizard builds the prompts and parses the responses of the
// requirements wizard, and reads and writes the documents it produces.
package wizard

import "slices"

// Question is one wizard prompt shown to the user.
type Question struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Question    string `json:"question"`
	Placeholder string `json:"placeholder"`
	Multiline   bool   `json:"multiline"`
}

// InitialQuestionIDs are answered first and seed the refinement request.
var InitialQuestionIDs = []string{"objectives", "known_parts"}

// RefinedCategories must all be covered by a refined question list.
var RefinedCategories = []string{"Mechanical", "Power", "Processing", "Communication", "Sensors", "Controls", "Analog"}

var catalogue = [...]Question{
	{
		ID:          "objectives",
		Category:    "General",
		Question:    "What are the general requirements and objectives of this PCB project?",
		Placeholder: "Describe what this board should accomplish...",
		Multiline:   true,
	},
	{
		ID:          "known_parts",
		Category:    "General",
		Question:    "Are there any specific details or known parts that should be used?",
		Placeholder: "List any specific components, chips, or constraints...",
		Multiline:   true,
	},
	{
		ID:          "mechanical",
		Category:    "Mechanical",
		Question:    "What are the mechanical requirements? (board size, mounting, enclosure constraints)",
		Placeholder: "e.g., Max 50x50mm, 4 corner mounting holes, must fit in specific enclosure...",
		Multiline:   true,
	},
	{
		ID:          "power",
		Category:    "Power",
		Question:    "What are the power requirements? (input voltage, power consumption, battery)",
		Placeholder: "e.g., 5V USB input, expected 100mA average consumption, battery backup needed...",
		Multiline:   true,
	},
	{
		ID:          "processing",
		Category:    "Processing",
		Question:    "What processing unit is needed and how should it be programmed?",
		Placeholder: "e.g., ARM Cortex-M4, programmed via SWD, needs to run FreeRTOS...",
		Multiline:   true,
	},
	{
		ID:          "communication",
		Category:    "Communication",
		Question:    "What communication interfaces are required? (USB, UART, SPI, I2C, wireless)",
		Placeholder: "e.g., USB for programming, UART debug, I2C for sensors, WiFi/BLE...",
		Multiline:   true,
	},
	{
		ID:          "sensors",
		Category:    "Sensors",
		Question:    "What sensors will the PCB need to interface with?",
		Placeholder: "e.g., Temperature sensor, accelerometer, ambient light sensor...",
		Multiline:   true,
	},
	{
		ID:          "controls",
		Category:    "Controls",
		Question:    "What other controls or ICs are needed? (motor drivers, LEDs, displays)",
		Placeholder: "e.g., H-bridge for motor, RGB LEDs, OLED display...",
		Multiline:   true,
	},
	{
		ID:          "analog",
		Category:    "Analog",
		Question:    "Are there any analog sensing or signal requirements?",
		Placeholder: "e.g., Analog input for potentiometer, audio input, current sensing...",
		Multiline:   true,
	},
}

// DefaultQuestions returns a fresh copy of the full catalogue.
func DefaultQuestions() []Question {
	out := make([]Question, len(catalogue))
	copy(out, catalogue[:])
	return out
}

// RemainingQuestions returns a copy of the catalogue without the initial
// questions.
func RemainingQuestions() []Question {
	out := make([]Question, 0, len(catalogue))
	for _, q := range catalogue {
		if !isInitial(q.ID) {
			out = append(out, q)
		}
	}
	return out
}

func isInitial(id string) bool {
	return slices.Contains(InitialQuestionIDs, id)
}

func lookup(id string) (Question, bool) {
	for _, q := range catalogue {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
