package catalog

import "github.com/verte-zerg/blindcode/internal/model"

func builtin() []model.Challenge {
	return []model.Challenge{
		{
			ID:          1,
			Title:       "Sum of Two Numbers",
			Description: "Calculate the sum of two predefined numbers.",
			Details: []string{
				"Write a program that prints the sum of 15 and 27.",
			},
			TimerSeconds:   60,
			ExpectedOutput: "42",
			SampleOutput:   "42",
		},
		{
			ID:          2,
			Title:       "Find Maximum Number",
			Description: "Find the largest number in a given list.",
			Details: []string{
				"Write a program to find and print the maximum number from the list: [10, 4, 25, 8, 19].",
			},
			TimerSeconds:   90,
			ExpectedOutput: "25",
			SampleOutput:   "25",
		},
		{
			ID:          3,
			Title:       "String Reversal",
			Description: "Reverse a given string.",
			Details: []string{
				`Write a program that reverses the string "hello" and prints the result.`,
			},
			TimerSeconds:   90,
			ExpectedOutput: "olleh",
			SampleOutput:   "olleh",
		},
		{
			ID:          4,
			Title:       "Check for Palindrome",
			Description: "Check if a string is a palindrome.",
			Details: []string{
				"A palindrome is a word that reads the same forwards and backward.",
				`Write a program that checks if the string "madam" is a palindrome.`,
				`Print "True" if it is, and "False" otherwise.`,
			},
			TimerSeconds:   120,
			ExpectedOutput: "True",
			SampleOutput:   "True",
		},
		{
			ID:          5,
			Title:       "Factorial of a Number",
			Description: "Calculate the factorial of a number.",
			Details: []string{
				"Write a program to calculate and print the factorial of 5.",
				"The factorial of n (n!) is the product of all positive integers up to n.",
			},
			TimerSeconds:   150,
			ExpectedOutput: "120",
			SampleOutput:   "120",
		},
		{
			ID:          6,
			Title:       "Count Vowels",
			Description: "Count the number of vowels in a string.",
			Details: []string{
				`Write a program to count and print the number of vowels (a, e, i, o, u) in the string "programming".`,
			},
			TimerSeconds:   120,
			ExpectedOutput: "3",
			SampleOutput:   "3",
		},
		{
			ID:          7,
			Title:       "Check for Prime Number",
			Description: "Check if a number is a prime number.",
			Details: []string{
				"A prime number is a number greater than 1 that has no positive divisors other than 1 and itself.",
				"Write a program to check if 29 is a prime number.",
				`Print "True" if it is prime, and "False" otherwise.`,
			},
			TimerSeconds:   180,
			ExpectedOutput: "True",
			SampleOutput:   "True",
		},
		{
			ID:          8,
			Title:       "Fibonacci Number",
			Description: "Find the Nth number in the Fibonacci sequence.",
			Details: []string{
				"The Fibonacci sequence starts with 0 and 1, and each subsequent number is the sum of the two preceding ones.",
				"Write a program to find and print the 10th number in the Fibonacci sequence (starting from index 0).",
				"Sequence: 0, 1, 1, 2, 3, 5, 8, 13, 21, 34, ...",
			},
			TimerSeconds:   210,
			ExpectedOutput: "34",
			SampleOutput:   "34",
		},
		{
			ID:          9,
			Title:       "FizzBuzz",
			Description: "Solve the classic FizzBuzz problem.",
			Details: []string{
				"Write a program that prints numbers from 1 to 15, one per line.",
				`For multiples of 3, print "Fizz" instead of the number.`,
				`For multiples of 5, print "Buzz".`,
				`For multiples of both 3 and 5, print "FizzBuzz".`,
			},
			TimerSeconds:   240,
			ExpectedOutput: "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz",
			SampleOutput:   "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz",
		},
		{
			ID:          10,
			Title:       "Sum of Array Elements",
			Description: "Calculate the sum of all elements in an array.",
			Details: []string{
				"Write a program to calculate and print the sum of all numbers in the list: [1, 2, 3, 4, 5].",
			},
			TimerSeconds:   90,
			ExpectedOutput: "15",
			SampleOutput:   "15",
		},
		{
			ID:          11,
			Title:       "Interactive Sum Calculator",
			Description: "Create an interactive program that takes two numbers as input and prints their sum.",
			Details: []string{
				"Write a program that prompts the user to enter two numbers and then prints their sum.",
				"Example interaction:",
				"Enter a number: 10",
				"Enter another number: 7",
				"The Sum is 17",
			},
			TimerSeconds:   120,
			ExpectedOutput: "Enter a number: Enter another number: The Sum is 17",
			SampleOutput:   "Enter a number: Enter another number: The Sum is 17",
			Stdin:          "10\n7",
		},
	}
}
